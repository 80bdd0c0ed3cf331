package analysis

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

var issueRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(close[sd]?|fix(e[sd])?|resolve[sd]?)\s+#\d+`),
	regexp.MustCompile(`#\d+`),
	regexp.MustCompile(`(?i)https://github\.com/[^/]+/[^/]+/issues/\d+`),
}

var screenshotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`!\[.*\]\(.*\)`),
	regexp.MustCompile(`<img\s`),
	regexp.MustCompile(`(?i)\.png|\.jpg|\.jpeg|\.gif|\.webp`),
	regexp.MustCompile(`(?i)screenshot|screen shot|screen-shot`),
}

// StructureAnalyzer validates PR metadata: title format, description,
// linked issues, screenshots for UI changes, and overall size.
type StructureAnalyzer struct{}

func NewStructureAnalyzer() *StructureAnalyzer { return &StructureAnalyzer{} }

func (a *StructureAnalyzer) Name() string { return "structure" }

func (a *StructureAnalyzer) Analyze(ctx *Context) []model.Feedback {
	var out []model.Feedback
	sc := ctx.Config.Structure

	if fb := a.checkTitle(ctx.PR.Title, sc.TitlePattern); fb != nil {
		out = append(out, *fb)
	}
	out = append(out, a.checkDescription(ctx.PR.Body, sc.RequireDescription, sc.MinDescriptionLength)...)
	if sc.RequireLinkedIssue {
		if fb := a.checkLinkedIssue(ctx.PR.Body); fb != nil {
			out = append(out, *fb)
		}
	}
	if ctx.HasUIChanges() {
		if fb := a.checkScreenshots(ctx.PR.Body); fb != nil {
			out = append(out, *fb)
		}
	}
	out = append(out, a.checkSize(ctx)...)

	return out
}

func (a *StructureAnalyzer) checkTitle(title, pattern string) *model.Feedback {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Printf("warning: dropping title pattern %q: %v", pattern, err)
		return nil
	}
	if re.MatchString(title) {
		return nil
	}
	return &model.Feedback{
		Severity: model.SeverityMedium,
		Category: model.CategoryStructure,
		Title:    "PR Title Format",
		Message: fmt.Sprintf("PR title doesn't follow the conventional format.\n\n"+
			"**Current:** `%s`\n\n"+
			"**Expected format:** `type(scope): description`\n\n"+
			"**Types:** feat, fix, docs, style, refactor, test, chore", title),
		Suggestion: "Example: `feat(auth): add OAuth login support`",
	}
}

func (a *StructureAnalyzer) checkDescription(body string, required bool, minLength int) []model.Feedback {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		if !required {
			return nil
		}
		return []model.Feedback{{
			Severity:   model.SeverityMedium,
			Category:   model.CategoryStructure,
			Title:      "Missing PR Description",
			Message:    "This PR has no description. A good description helps reviewers understand the context and purpose of your changes.",
			Suggestion: "Add a description explaining:\n- What changes were made\n- Why these changes were needed\n- How to test the changes",
		}}
	}
	if len(trimmed) < minLength {
		return []model.Feedback{{
			Severity:   model.SeverityLow,
			Category:   model.CategoryStructure,
			Title:      "Short PR Description",
			Message:    fmt.Sprintf("PR description is very short (%d chars). Consider adding more context.", len(trimmed)),
			Suggestion: "Include: context, motivation, testing steps, and any breaking changes.",
		}}
	}
	return nil
}

func (a *StructureAnalyzer) checkLinkedIssue(body string) *model.Feedback {
	for _, re := range issueRefPatterns {
		if body != "" && re.MatchString(body) {
			return nil
		}
	}
	return &model.Feedback{
		Severity:   model.SeverityLow,
		Category:   model.CategoryStructure,
		Title:      "No Linked Issue",
		Message:    "This PR doesn't appear to link to any issue.",
		Suggestion: "Link to related issues using: `Closes #123`, `Fixes #456`, or `Relates to #789`",
	}
}

func (a *StructureAnalyzer) checkScreenshots(body string) *model.Feedback {
	for _, re := range screenshotPatterns {
		if body != "" && re.MatchString(body) {
			return nil
		}
	}
	return &model.Feedback{
		Severity:   model.SeverityMedium,
		Category:   model.CategoryStructure,
		Title:      "Missing Screenshots",
		Message:    "This PR includes UI changes but no screenshots were found in the description.",
		Suggestion: "Add before/after screenshots to help reviewers understand the visual impact.",
	}
}

func (a *StructureAnalyzer) checkSize(ctx *Context) []model.Feedback {
	sc := ctx.Config.Size

	filesChanged := len(ctx.Files)
	linesAdded := 0
	linesDeleted := 0
	for _, f := range ctx.Files {
		linesAdded += f.Additions
		linesDeleted += f.Deletions
	}

	var out []model.Feedback
	switch {
	case filesChanged > sc.MaxFiles:
		out = append(out, model.Feedback{
			Severity:   model.SeverityMedium,
			Category:   model.CategoryStructure,
			Title:      "Large PR - Many Files",
			Message:    fmt.Sprintf("This PR changes **%d files**, which exceeds the recommended limit of %d.", filesChanged, sc.MaxFiles),
			Suggestion: "Consider breaking this PR into smaller, focused PRs for easier review.",
		})
	case float64(filesChanged) > float64(sc.MaxFiles)*sc.WarningThreshold:
		out = append(out, model.Feedback{
			Severity:   model.SeverityLow,
			Category:   model.CategoryStructure,
			Title:      "PR Size Warning",
			Message:    fmt.Sprintf("This PR changes %d files, approaching the limit of %d.", filesChanged, sc.MaxFiles),
			Suggestion: "Consider if this can be split into smaller PRs.",
		})
	}

	if linesAdded > sc.MaxLinesAdded {
		out = append(out, model.Feedback{
			Severity:   model.SeverityMedium,
			Category:   model.CategoryStructure,
			Title:      "Large PR - Many Lines Added",
			Message:    fmt.Sprintf("This PR adds **+%d lines**, which exceeds the recommended limit of %d.", linesAdded, sc.MaxLinesAdded),
			Suggestion: "Large PRs are harder to review thoroughly. Consider splitting into smaller changes.",
		})
	}
	if linesDeleted > sc.MaxLinesDeleted {
		out = append(out, model.Feedback{
			Severity:   model.SeverityLow,
			Category:   model.CategoryStructure,
			Title:      "Large Deletion",
			Message:    fmt.Sprintf("This PR deletes **%d lines**. Ensure this is intentional.", linesDeleted),
			Suggestion: "Verify that important code or documentation isn't being removed accidentally.",
		})
	}

	return out
}
