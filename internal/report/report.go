// Package report renders review results for GitHub comments and terminals.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// SeverityEmoji returns the marker used for a severity in rendered output.
func SeverityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "🔴"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🟢"
	default:
		return "💭"
	}
}

// SeverityLabel returns the emoji-prefixed uppercase severity label.
func SeverityLabel(s model.Severity) string {
	return SeverityEmoji(s) + " " + strings.ToUpper(s.String())
}

// CategoryEmoji returns the marker used for a category in rendered output.
func CategoryEmoji(c model.Category) string {
	switch c {
	case model.CategorySecurity:
		return "🔒"
	case model.CategoryPerformance:
		return "⚡"
	case model.CategoryStyle:
		return "🎨"
	case model.CategoryArchitecture:
		return "🏗️"
	case model.CategoryTesting:
		return "🧪"
	case model.CategoryDocumentation:
		return "📚"
	case model.CategoryStructure:
		return "📋"
	default:
		return "✨"
	}
}

// CategoryLabel returns the emoji-prefixed title-case category label.
func CategoryLabel(c model.Category) string {
	words := strings.Split(c.String(), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return CategoryEmoji(c) + " " + strings.Join(words, " ")
}

// SizeEmoji returns the marker for a size category label.
func SizeEmoji(size string) string {
	switch size {
	case "XS", "S":
		return "🟢"
	case "M":
		return "🟡"
	case "L":
		return "🟠"
	default:
		return "🔴"
	}
}

// StatusLabel returns the emoji-prefixed display form of a review status.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusChangesRequested:
		return "🔴 Changes Requested"
	case model.StatusNeedsAttention:
		return "🟡 Needs Attention"
	case model.StatusLookingGood:
		return "🟢 Looking Good"
	default:
		return "✅ Approved"
	}
}

// countsLine summarizes issue counts across severities.
func countsLine(r *model.ReviewResult) string {
	return fmt.Sprintf("🔴 %d HIGH | 🟡 %d MEDIUM | 🟢 %d LOW | 💭 %d NIT",
		r.CountBySeverity(model.SeverityHigh),
		r.CountBySeverity(model.SeverityMedium),
		r.CountBySeverity(model.SeverityLow),
		r.CountBySeverity(model.SeverityNit))
}

// tableRow renders one feedback as a markdown table row.
func tableRow(fb model.Feedback) string {
	fileCol := "-"
	if fb.File != "" {
		fileCol = "`" + fb.File + "`"
	}
	lineCol := "-"
	if fb.Line > 0 {
		lineCol = fmt.Sprintf("%d", fb.Line)
	}
	message := fb.Title
	if message == "" {
		message = fb.Message
		if len(message) > 60 {
			message = truncate(message, 60) + "..."
		}
	}
	return fmt.Sprintf("| %s | %s | %s |", fileCol, lineCol, message)
}

// truncate cuts s to at most n bytes, backing off to the previous rune
// boundary so a multibyte character is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// feedbackDetail renders the full markdown body for one feedback.
func feedbackDetail(fb model.Feedback) string {
	var parts []string

	header := fmt.Sprintf("**%s** | %s", SeverityLabel(fb.Severity), CategoryLabel(fb.Category))
	if fb.Title != "" {
		header += " | " + fb.Title
	}
	parts = append(parts, header)

	if fb.File != "" {
		location := fmt.Sprintf("📍 `%s`", fb.File)
		if fb.Line > 0 {
			location += fmt.Sprintf(" (line %d", fb.Line)
			if fb.EndLine > fb.Line {
				location += fmt.Sprintf("-%d", fb.EndLine)
			}
			location += ")"
		}
		parts = append(parts, location)
	}

	parts = append(parts, "", fb.Message)

	if fb.Snippet != "" {
		parts = append(parts, "", "```", fb.Snippet, "```")
	}
	if fb.Suggestion != "" {
		parts = append(parts, "", "💡 **Suggestion:**", fb.Suggestion)
	}

	return strings.Join(parts, "\n")
}

// Markdown renders the full review comment body.
func Markdown(r *model.ReviewResult) string {
	var lines []string
	add := func(ss ...string) { lines = append(lines, ss...) }

	add("## 🤖 AI Code Review", "")

	add("### 📊 Summary", "")
	add("| Metric | Value |")
	add("|--------|-------|")
	add(fmt.Sprintf("| Files Changed | %d |", r.Metrics.FilesChanged))
	add(fmt.Sprintf("| Lines Added | +%d |", r.Metrics.LinesAdded))
	add(fmt.Sprintf("| Lines Deleted | -%d |", r.Metrics.LinesDeleted))
	size := r.Metrics.SizeCategory()
	add(fmt.Sprintf("| PR Size | %s %s |", SizeEmoji(size), size))
	add(fmt.Sprintf("| Status | %s |", StatusLabel(r.OverallStatus())))
	add("")

	if len(r.Feedbacks) > 0 {
		add("**Issues Found:** "+countsLine(r), "")
	}

	if r.Summary != "" {
		add("### 🧠 AI Summary", "", r.Summary, "")
	}

	if high := r.FeedbacksBySeverity(model.SeverityHigh); len(high) > 0 {
		add("### 🔴 HIGH Priority (Blocking)", "")
		add("| File | Line | Issue |")
		add("|------|------|-------|")
		for _, fb := range high {
			add(tableRow(fb))
		}
		add("")
		for _, fb := range high {
			summary := fb.Title
			if summary == "" {
				summary = fb.Message
				if len(summary) > 50 {
					summary = summary[:50]
				}
			}
			add("<details>")
			add(fmt.Sprintf("<summary>%s</summary>", summary))
			add("", feedbackDetail(fb), "", "</details>", "")
		}
	}

	if medium := r.FeedbacksBySeverity(model.SeverityMedium); len(medium) > 0 {
		add("### 🟡 MEDIUM Priority", "")
		add("| File | Line | Issue |")
		add("|------|------|-------|")
		for _, fb := range medium {
			add(tableRow(fb))
		}
		add("")
	}

	if low := r.FeedbacksBySeverity(model.SeverityLow); len(low) > 0 {
		add("### 🟢 LOW Priority (Recommendations)", "")
		add("| File | Line | Issue |")
		add("|------|------|-------|")
		for _, fb := range low {
			add(tableRow(fb))
		}
		add("")
	}

	if nits := r.FeedbacksBySeverity(model.SeverityNit); len(nits) > 0 {
		add("### 💭 Nitpicks", "")
		for _, fb := range nits {
			location := ""
			if fb.File != "" {
				location = "`" + fb.File + "`"
			}
			if fb.Line > 0 {
				location += fmt.Sprintf(" (line %d)", fb.Line)
			}
			add(fmt.Sprintf("- %s: %s", location, fb.Message))
		}
		add("")
	}

	if len(r.Positives) > 0 {
		add("### ✅ What's Good", "")
		for _, p := range r.Positives {
			add("- " + p)
		}
		add("")
	}

	add("---", "*Powered by AI Reviewer* 🤖")

	return strings.Join(lines, "\n")
}
