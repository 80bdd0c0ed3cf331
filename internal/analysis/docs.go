package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

var apiFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)api/`),
	regexp.MustCompile(`(?i)routes/`),
	regexp.MustCompile(`(?i)endpoints/`),
	regexp.MustCompile(`(?i)views\.py$`),
	regexp.MustCompile(`(?i)router\.`),
	regexp.MustCompile(`(?i)controller\.`),
}

var docFileMarkers = []string{
	"readme.md", "readme.rst",
	"changelog.md", "changelog.rst",
	"history.md", "history.rst",
	"docs/", "documentation/", "api.md",
}

var (
	defRE       = regexp.MustCompile(`^\s*(def|class)\s+(\w+)`)
	hunkStartRE = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)
)

// DocAnalyzer checks whether documentation kept up with the code changes.
type DocAnalyzer struct{}

func NewDocAnalyzer() *DocAnalyzer { return &DocAnalyzer{} }

func (a *DocAnalyzer) Name() string { return "doc" }

func (a *DocAnalyzer) Analyze(ctx *Context) []model.Feedback {
	var out []model.Feedback

	if fb := a.checkAPIDocs(ctx.Files); fb != nil {
		out = append(out, *fb)
	}
	if fb := a.checkReadme(ctx.Files); fb != nil {
		out = append(out, *fb)
	}
	if fb := a.checkChangelog(ctx); fb != nil {
		out = append(out, *fb)
	}
	for _, f := range ctx.Files {
		out = append(out, a.checkDocstrings(f)...)
	}

	return out
}

func (a *DocAnalyzer) checkAPIDocs(files []model.ChangedFile) *model.Feedback {
	hasAPIChanges := false
	hasDocChanges := false
	for _, f := range files {
		for _, re := range apiFilePatterns {
			if re.MatchString(f.Filename) {
				hasAPIChanges = true
				break
			}
		}
		lower := strings.ToLower(f.Filename)
		for _, marker := range docFileMarkers {
			if strings.Contains(lower, marker) {
				hasDocChanges = true
				break
			}
		}
	}
	if !hasAPIChanges || hasDocChanges {
		return nil
	}
	return &model.Feedback{
		Severity:   model.SeverityLow,
		Category:   model.CategoryDocumentation,
		Title:      "API Changes Without Documentation",
		Message:    "This PR appears to modify API endpoints but no documentation files were updated.",
		Suggestion: "Consider updating API documentation (README, API.md, or docs/) to reflect the changes.",
	}
}

func (a *DocAnalyzer) checkReadme(files []model.ChangedFile) *model.Feedback {
	newFiles := 0
	additions := 0
	readmeChanged := false
	for _, f := range files {
		if !f.IsTestFile() {
			if f.Status == "added" {
				newFiles++
			}
			additions += f.Additions
		}
		if strings.Contains(strings.ToLower(f.Filename), "readme") {
			readmeChanged = true
		}
	}
	if newFiles < 3 || readmeChanged || additions <= 200 {
		return nil
	}
	return &model.Feedback{
		Severity:   model.SeverityLow,
		Category:   model.CategoryDocumentation,
		Title:      "Consider README Update",
		Message:    fmt.Sprintf("This PR adds %d new files with significant code additions. Consider if README needs to be updated.", newFiles),
		Suggestion: "Update README if this PR introduces new features, dependencies, or usage patterns.",
	}
}

func (a *DocAnalyzer) checkChangelog(ctx *Context) *model.Feedback {
	title := strings.ToLower(ctx.PR.Title)
	isFeature := containsAny(title, "feat", "feature", "add", "new", "implement")
	isBreaking := containsAny(title, "breaking", "major", "deprecate")
	if !isFeature && !isBreaking {
		return nil
	}

	for _, f := range ctx.Files {
		lower := strings.ToLower(f.Filename)
		if strings.Contains(lower, "changelog") || strings.Contains(lower, "history") {
			return nil
		}
	}

	severity := model.SeverityLow
	if isBreaking {
		severity = model.SeverityMedium
	}
	return &model.Feedback{
		Severity:   severity,
		Category:   model.CategoryDocumentation,
		Title:      "Consider CHANGELOG Update",
		Message:    "This PR appears to introduce new features or breaking changes.",
		Suggestion: "Add an entry to CHANGELOG.md describing the changes.",
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// checkDocstrings walks the raw patch so that context lines directly below a
// new def or class still count when looking for the docstring.
func (a *DocAnalyzer) checkDocstrings(f model.ChangedFile) []model.Feedback {
	if f.Extension() != "py" || f.Patch == "" {
		return nil
	}

	var out []model.Feedback
	lines := strings.Split(f.Patch, "\n")
	currentLine := 0
	inHunk := false

	for i, line := range lines {
		if m := hunkStartRE.FindStringSubmatch(line); m != nil {
			currentLine, _ = strconv.Atoi(m[1])
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}

		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			content := line[1:]
			if m := defRE.FindStringSubmatch(content); m != nil {
				kind, name := m[1], m[2]
				if !strings.HasPrefix(name, "_") && !hasDocstringBelow(lines, i) {
					out = append(out, model.Feedback{
						File:       f.Filename,
						Line:       currentLine,
						Severity:   model.SeverityNit,
						Category:   model.CategoryDocumentation,
						Title:      "Missing Docstring",
						Message:    fmt.Sprintf("New %s `%s` is missing a docstring.", kind, name),
						Suggestion: fmt.Sprintf("Add a docstring explaining what this %s does.", kind),
					})
				}
			}
			currentLine++
		} else if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, `\`) {
			currentLine++
		}
	}

	return out
}

// hasDocstringBelow scans the next few patch lines for a docstring opener,
// stopping at the first substantive line.
func hasDocstringBelow(lines []string, defIdx int) bool {
	for j := defIdx + 1; j < len(lines) && j < defIdx+4; j++ {
		next := lines[j]
		if strings.HasPrefix(next, "+") {
			next = next[1:]
		}
		if strings.Contains(next, `"""`) || strings.Contains(next, "'''") {
			return true
		}
		trimmed := strings.TrimSpace(next)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return false
		}
	}
	return false
}
