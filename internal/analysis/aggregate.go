package analysis

import (
	"sort"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

type feedbackKey struct {
	file     string
	line     int
	title    string
	category model.Category
}

// Aggregate deduplicates and orders combined analyzer output. Duplicates
// share file, line, title, and category; the first occurrence wins, so
// analyzer order decides which severity and message survive. The result is
// sorted by severity, then filename with file-less feedback first. Running
// Aggregate on its own output returns it unchanged.
func Aggregate(feedbacks []model.Feedback) []model.Feedback {
	seen := make(map[feedbackKey]bool, len(feedbacks))
	out := make([]model.Feedback, 0, len(feedbacks))
	for _, fb := range feedbacks {
		key := feedbackKey{fb.File, fb.Line, fb.Title, fb.Category}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fb)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity < out[j].Severity
		}
		return out[i].File < out[j].File
	})

	return out
}
