package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/diffmap"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// RiskAnalyzer scans added lines for security vulnerabilities and
// performance hotspots.
type RiskAnalyzer struct {
	security    []Rule
	performance []Rule
}

// NewRiskAnalyzer builds the analyzer's rule tables once: built-ins plus the
// configured custom security patterns.
func NewRiskAnalyzer(rc config.ReviewConfig) *RiskAnalyzer {
	return &RiskAnalyzer{
		security:    SecurityRules(rc.Security.Patterns),
		performance: PerformanceRules(),
	}
}

func (a *RiskAnalyzer) Name() string { return "risk" }

func (a *RiskAnalyzer) Analyze(ctx *Context) []model.Feedback {
	var out []model.Feedback

	for _, f := range ctx.Files {
		if ctx.Skip(f) || f.Patch == "" {
			continue
		}
		lines := diffmap.AddedLines(f.Patch)
		if len(lines) == 0 {
			continue
		}

		out = append(out, MatchRules(a.security, f.Filename, lines)...)
		out = append(out, MatchRules(a.performance, f.Filename, lines)...)
	}

	return out
}

// MatchRules applies a rule table to one file's added lines. Per-line rules
// run against every line independently; windowed rules run against the
// joined window. No short-circuiting: a single line may trigger several
// rules and each produces its own feedback.
func MatchRules(rules []Rule, filename string, lines []diffmap.AddedLine) []model.Feedback {
	var out []model.Feedback
	var window string
	windowBuilt := false

	for _, rule := range rules {
		if !rule.AppliesTo(filename) {
			continue
		}

		switch rule.Mode {
		case MatchWindow:
			if !windowBuilt {
				window = diffmap.Window(lines)
				windowBuilt = true
			}
			for _, loc := range rule.Pattern.FindAllStringIndex(window, -1) {
				// Map the match offset back to the added line it starts on.
				idx := strings.Count(window[:loc[0]], "\n")
				if idx >= len(lines) {
					idx = len(lines) - 1
				}
				snippet := truncate(window[loc[0]:loc[1]], 100)
				out = append(out, model.Feedback{
					File:       filename,
					Line:       lines[idx].Number,
					Severity:   rule.Severity,
					Category:   rule.Category,
					Title:      rule.Name,
					Message:    rule.Message,
					Suggestion: rule.Suggestion,
					Snippet:    snippet,
				})
			}
		default:
			for _, l := range lines {
				if rule.Pattern.MatchString(l.Text) {
					out = append(out, model.Feedback{
						File:       filename,
						Line:       l.Number,
						Severity:   rule.Severity,
						Category:   rule.Category,
						Title:      rule.Name,
						Message:    rule.Message,
						Suggestion: rule.Suggestion,
						Snippet:    strings.TrimSpace(l.Text),
					})
				}
			}
		}
	}

	return out
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
