package analysis

import (
	"fmt"
	"strings"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// codeExtensions are the file types that can carry tests.
var codeExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true, "mjs": true,
}

// untestableSkipPatterns are files that never require tests.
var untestableSkipPatterns = []string{
	"**/migrations/*",
	"**/__init__.py",
	"**/setup.py",
	"**/conftest.py",
	"**/config*.py",
	"**/settings*.py",
	"**/constants*.py",
	"**/types.ts",
	"**/index.ts",
	"**/index.js",
}

// TestAnalyzer checks that source changes come with test changes.
type TestAnalyzer struct{}

func NewTestAnalyzer() *TestAnalyzer { return &TestAnalyzer{} }

func (a *TestAnalyzer) Name() string { return "test" }

func (a *TestAnalyzer) Analyze(ctx *Context) []model.Feedback {
	tc := ctx.Config.Testing

	var sources, tests []model.ChangedFile
	for _, f := range ctx.Files {
		if ctx.Skip(f) {
			continue
		}
		switch {
		case a.isTestFile(f, tc.TestFilePatterns):
			tests = append(tests, f)
		case a.needsTests(f.Filename, tc.RequireTestsFor):
			sources = append(sources, f)
		}
	}

	var out []model.Feedback
	out = append(out, a.checkCoverage(sources, tests)...)
	out = append(out, a.checkNewFiles(sources, tests)...)
	if fb := a.checkRatio(sources, tests); fb != nil {
		out = append(out, *fb)
	}
	return out
}

// isTestFile matches the configured glob patterns first, then falls back to
// the common name indicators. Either signal is enough.
func (a *TestAnalyzer) isTestFile(f model.ChangedFile, patterns []string) bool {
	if matchAny(patterns, f.Filename) {
		return true
	}
	return f.IsTestFile()
}

func (a *TestAnalyzer) needsTests(filename string, patterns []string) bool {
	if !codeExtensions[extensionOf(filename)] {
		return false
	}
	if matchAny(untestableSkipPatterns, filename) {
		return false
	}
	return matchAny(patterns, filename)
}

func extensionOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return filename[i+1:]
	}
	return ""
}

// checkCoverage flags source files with significant additions whose likely
// test files saw no changes.
func (a *TestAnalyzer) checkCoverage(sources, tests []model.ChangedFile) []model.Feedback {
	testNames := make(map[string]bool, len(tests))
	for _, t := range tests {
		testNames[t.Filename] = true
		if i := strings.LastIndex(t.Filename, "/"); i >= 0 {
			testNames[t.Filename[i+1:]] = true
		}
	}

	var out []model.Feedback
	for _, src := range sources {
		if src.Additions <= 20 {
			continue
		}
		touched := false
		for _, candidate := range possibleTestFiles(src.Filename) {
			if testNames[candidate] {
				touched = true
				break
			}
		}
		if !touched {
			out = append(out, model.Feedback{
				File:       src.Filename,
				Severity:   model.SeverityLow,
				Category:   model.CategoryTesting,
				Title:      "Consider Adding Tests",
				Message:    fmt.Sprintf("File has %d lines added but no corresponding test file was modified.", src.Additions),
				Suggestion: "Consider adding or updating tests for this functionality.",
			})
		}
	}
	return out
}

// checkNewFiles flags brand-new source files when no new test files arrived
// alongside them.
func (a *TestAnalyzer) checkNewFiles(sources, tests []model.ChangedFile) []model.Feedback {
	var newSources []model.ChangedFile
	for _, f := range sources {
		if f.Status == "added" {
			newSources = append(newSources, f)
		}
	}
	if len(newSources) == 0 {
		return nil
	}
	for _, f := range tests {
		if f.Status == "added" {
			return nil
		}
	}

	names := make([]string, 0, 3)
	for i, f := range newSources {
		if i == 3 {
			break
		}
		names = append(names, "`"+f.Filename+"`")
	}
	extra := ""
	if len(newSources) > 3 {
		extra = fmt.Sprintf(" and %d more", len(newSources)-3)
	}

	return []model.Feedback{{
		Severity:   model.SeverityMedium,
		Category:   model.CategoryTesting,
		Title:      "New Files Without Tests",
		Message:    fmt.Sprintf("New source files (%s%s) were added without corresponding test files.", strings.Join(names, ", "), extra),
		Suggestion: "Add unit tests for new functionality to maintain test coverage.",
	}}
}

// checkRatio compares total test churn against total source churn.
func (a *TestAnalyzer) checkRatio(sources, tests []model.ChangedFile) *model.Feedback {
	if len(sources) == 0 {
		return nil
	}
	sourceChanges := 0
	for _, f := range sources {
		sourceChanges += f.Additions + f.Deletions
	}
	testChanges := 0
	for _, f := range tests {
		testChanges += f.Additions + f.Deletions
	}
	if sourceChanges == 0 {
		return nil
	}

	if sourceChanges > 50 && testChanges == 0 {
		return &model.Feedback{
			Severity:   model.SeverityMedium,
			Category:   model.CategoryTesting,
			Title:      "No Test Changes",
			Message:    fmt.Sprintf("This PR has %d lines of source code changes but no test changes.", sourceChanges),
			Suggestion: "Consider adding tests to maintain code coverage.",
		}
	}
	if sourceChanges > 100 && float64(testChanges)/float64(sourceChanges) < 0.3 {
		return &model.Feedback{
			Severity:   model.SeverityLow,
			Category:   model.CategoryTesting,
			Title:      "Low Test Coverage Ratio",
			Message:    fmt.Sprintf("Test changes (%d lines) are significantly less than source changes (%d lines).", testChanges, sourceChanges),
			Suggestion: "Consider adding more comprehensive tests for the new functionality.",
		}
	}
	return nil
}

// possibleTestFiles lists the conventional test file names for a source file.
func possibleTestFiles(source string) []string {
	filename := source
	if i := strings.LastIndex(source, "/"); i >= 0 {
		filename = source[i+1:]
	}
	base := filename
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		base = filename[:i]
		ext = filename[i+1:]
	}

	switch ext {
	case "py":
		return []string{
			"test_" + base + ".py",
			base + "_test.py",
			"tests/test_" + base + ".py",
			"tests/" + base + "_test.py",
		}
	case "js", "jsx", "ts", "tsx":
		return []string{
			base + ".test." + ext,
			base + ".spec." + ext,
			"__tests__/" + base + ".test." + ext,
			"__tests__/" + base + "." + ext,
		}
	}
	return nil
}
