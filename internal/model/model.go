// Package model defines the core data types shared across aireview.
package model

import (
	"strings"
	"time"
)

// Severity orders feedback by urgency. The numeric value is the sort rank:
// lower is more urgent.
type Severity int

const (
	SeverityHigh Severity = iota
	SeverityMedium
	SeverityLow
	SeverityNit
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityNit:
		return "NIT"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a severity label to a Severity. Unrecognized labels map
// to fallback; each analyzer passes its own default.
func ParseSeverity(label string, fallback Severity) Severity {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	case "NIT":
		return SeverityNit
	default:
		return fallback
	}
}

// Category classifies a feedback orthogonally to severity.
type Category int

const (
	CategorySecurity Category = iota
	CategoryPerformance
	CategoryStyle
	CategoryArchitecture
	CategoryTesting
	CategoryDocumentation
	CategoryStructure
	CategoryBestPractice
)

func (c Category) String() string {
	switch c {
	case CategorySecurity:
		return "security"
	case CategoryPerformance:
		return "performance"
	case CategoryStyle:
		return "style"
	case CategoryArchitecture:
		return "architecture"
	case CategoryTesting:
		return "testing"
	case CategoryDocumentation:
		return "documentation"
	case CategoryStructure:
		return "pr_structure"
	case CategoryBestPractice:
		return "best_practice"
	default:
		return "unknown"
	}
}

// ParseCategory maps a category label to a Category, defaulting to
// best_practice for anything unrecognized.
func ParseCategory(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "security":
		return CategorySecurity
	case "performance":
		return CategoryPerformance
	case "style":
		return CategoryStyle
	case "architecture":
		return CategoryArchitecture
	case "testing":
		return CategoryTesting
	case "documentation", "docs":
		return CategoryDocumentation
	case "pr_structure", "structure":
		return CategoryStructure
	default:
		return CategoryBestPractice
	}
}

// Feedback is a single piece of review feedback. File may be empty and Line
// zero for PR-level findings. Instances are never mutated after creation.
type Feedback struct {
	File       string
	Line       int
	EndLine    int
	Severity   Severity
	Category   Category
	Title      string
	Message    string
	Suggestion string
	Snippet    string
}

// ChangedFile is one file changed in a pull request, as reported by the
// hosting platform.
type ChangedFile struct {
	Filename         string
	Status           string // added, removed, modified, renamed
	Additions        int
	Deletions        int
	Patch            string
	PreviousFilename string
}

// Extension returns the suffix after the last dot, without the dot.
func (f ChangedFile) Extension() string {
	idx := strings.LastIndex(f.Filename, ".")
	if idx < 0 || idx == len(f.Filename)-1 {
		return ""
	}
	return f.Filename[idx+1:]
}

var testIndicators = []string{"test_", "_test.", ".test.", ".spec.", "/tests/", "/test/", "__tests__"}

// IsTestFile reports whether the filename carries a common test indicator.
func (f ChangedFile) IsTestFile() bool {
	name := strings.ToLower(f.Filename)
	for _, ind := range testIndicators {
		if strings.Contains(name, ind) {
			return true
		}
	}
	return false
}

// PullRequest holds the PR metadata the review needs.
type PullRequest struct {
	Number  int
	Title   string
	Body    string
	State   string
	BaseSHA string
	HeadSHA string
	BaseRef string
	HeadRef string
}

// PRMetrics summarizes the shape of a PR.
type PRMetrics struct {
	FilesChanged       int
	LinesAdded         int
	LinesDeleted       int
	TotalChanges       int
	TestFilesChanged   int
	SourceFilesChanged int
}

// sizeBuckets are checked in ascending order; a PR lands in the first bucket
// whose file and line bounds it satisfies.
var sizeBuckets = []struct {
	label    string
	maxFiles int
	maxLines int
}{
	{"XS", 3, 50},
	{"S", 5, 150},
	{"M", 10, 300},
	{"L", 20, 500},
}

// SizeCategory buckets the PR into XS, S, M, L, or XL.
func (m PRMetrics) SizeCategory() string {
	for _, b := range sizeBuckets {
		if m.FilesChanged <= b.maxFiles && m.TotalChanges <= b.maxLines {
			return b.label
		}
	}
	return "XL"
}

// Status is the overall review outcome, derived from severity counts.
type Status int

const (
	StatusApproved Status = iota
	StatusLookingGood
	StatusNeedsAttention
	StatusChangesRequested
)

func (s Status) String() string {
	switch s {
	case StatusChangesRequested:
		return "changes requested"
	case StatusNeedsAttention:
		return "needs attention"
	case StatusLookingGood:
		return "looking good"
	default:
		return "approved"
	}
}

// Blocking reports whether the status maps to a blocking review verdict at
// the posting boundary.
func (s Status) Blocking() bool {
	return s == StatusChangesRequested
}

// ReviewResult is the complete outcome of one review run.
type ReviewResult struct {
	PRNumber  int
	PRTitle   string
	Repo      string
	Timestamp time.Time
	Metrics   PRMetrics
	Feedbacks []Feedback
	Summary   string
	Positives []string
}

// CountBySeverity returns the number of feedbacks at the given severity.
func (r *ReviewResult) CountBySeverity(s Severity) int {
	n := 0
	for _, fb := range r.Feedbacks {
		if fb.Severity == s {
			n++
		}
	}
	return n
}

// FeedbacksBySeverity returns the feedbacks at the given severity, in order.
func (r *ReviewResult) FeedbacksBySeverity(s Severity) []Feedback {
	var out []Feedback
	for _, fb := range r.Feedbacks {
		if fb.Severity == s {
			out = append(out, fb)
		}
	}
	return out
}

// OverallStatus derives the review status from severity counts. No other
// code path may override this derivation.
func (r *ReviewResult) OverallStatus() Status {
	switch {
	case r.CountBySeverity(SeverityHigh) > 0:
		return StatusChangesRequested
	case r.CountBySeverity(SeverityMedium) > 0:
		return StatusNeedsAttention
	case r.CountBySeverity(SeverityLow) > 0 || r.CountBySeverity(SeverityNit) > 0:
		return StatusLookingGood
	default:
		return StatusApproved
	}
}
