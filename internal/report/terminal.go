package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
	colorBorder = lipgloss.Color("#44475a")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true).
			Padding(1, 0, 0, 0)

	highStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	lowStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	nitStyle    = lipgloss.NewStyle().Foreground(colorDim)

	locationStyle = lipgloss.NewStyle().Foreground(colorBlue)
	messageStyle  = lipgloss.NewStyle().Foreground(colorFg)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	snippetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

func severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityHigh:
		return highStyle
	case model.SeverityMedium:
		return mediumStyle
	case model.SeverityLow:
		return lowStyle
	default:
		return nitStyle
	}
}

// Terminal renders the review result as a styled terminal report.
func Terminal(r *model.ReviewResult) string {
	var b strings.Builder

	header := fmt.Sprintf("AI Code Review - PR #%d", r.PRNumber)
	if r.Repo != "" {
		header += " - " + r.Repo
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	if r.PRTitle != "" {
		b.WriteString(dimStyle.Render(r.PRTitle))
		b.WriteString("\n")
	}

	size := r.Metrics.SizeCategory()
	b.WriteString(fmt.Sprintf("%d files, +%d/-%d lines (%s) - %s\n",
		r.Metrics.FilesChanged, r.Metrics.LinesAdded, r.Metrics.LinesDeleted,
		size, StatusLabel(r.OverallStatus())))

	if r.Summary != "" {
		b.WriteString(sectionStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(r.Summary))
		b.WriteString("\n")
	}

	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow, model.SeverityNit} {
		fbs := r.FeedbacksBySeverity(sev)
		if len(fbs) == 0 {
			continue
		}
		label := fmt.Sprintf("%s (%d)", strings.ToUpper(sev.String()), len(fbs))
		b.WriteString(sectionStyle.Render(severityStyle(sev).Render(label)))
		b.WriteString("\n")
		for _, fb := range fbs {
			b.WriteString(renderFeedback(fb))
		}
	}

	if len(r.Positives) > 0 {
		b.WriteString(sectionStyle.Render(lowStyle.Render("What's Good")))
		b.WriteString("\n")
		for _, p := range r.Positives {
			b.WriteString("  + " + p + "\n")
		}
	}

	return b.String()
}

func renderFeedback(fb model.Feedback) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(severityStyle(fb.Severity).Render("●"))
	b.WriteString(" ")
	if fb.Title != "" {
		b.WriteString(messageStyle.Bold(true).Render(fb.Title))
		b.WriteString(" ")
	}
	if fb.File != "" {
		loc := fb.File
		if fb.Line > 0 {
			loc = fmt.Sprintf("%s:%d", fb.File, fb.Line)
		}
		b.WriteString(locationStyle.Render(loc))
	}
	b.WriteString("\n")

	b.WriteString("    " + fb.Message + "\n")
	if fb.Snippet != "" {
		b.WriteString(snippetStyle.Render(highlightSnippet(fb.File, fb.Snippet)))
		b.WriteString("\n")
	}
	if fb.Suggestion != "" {
		b.WriteString(dimStyle.Render("    suggestion: " + fb.Suggestion))
		b.WriteString("\n")
	}

	return b.String()
}

// highlightSnippet applies syntax highlighting to a snippet based on the
// file name. Falls back to the raw text when no lexer matches or the
// tokenizer fails.
func highlightSnippet(filename, snippet string) string {
	lexer := lexerForFile(filename)
	if lexer == nil {
		return snippet
	}
	iterator, err := lexer.Tokenise(nil, snippet)
	if err != nil {
		return snippet
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	for _, token := range iterator.Tokens() {
		entry := style.Get(token.Type)
		if entry.Colour.IsSet() {
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(entry.Colour.String())).
				Render(token.Value))
		} else {
			b.WriteString(token.Value)
		}
	}
	return b.String()
}

func lexerForFile(filename string) chroma.Lexer {
	lexer := lexers.Match(filename)
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}
