package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DifanaDAP/ai-reviewer/internal/diffmap"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

var (
	snakeCaseFileRE  = regexp.MustCompile(`^[a-z][a-z0-9_]*\.py$`)
	pascalCaseBaseRE = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	camelBoundaryRE  = regexp.MustCompile(`([a-z])([A-Z])`)
	funcDeclRE       = regexp.MustCompile(`^\s*(def|function|const|let|var)\s+(\w+)\s*[\(=]`)
	importLineRE     = regexp.MustCompile(`^(?:import|from)\s+(\w+)`)
)

// ConventionAnalyzer validates file naming, architecture boundaries,
// duplicate function names, and import grouping.
type ConventionAnalyzer struct {
	architecture []Rule
}

func NewConventionAnalyzer() *ConventionAnalyzer {
	return &ConventionAnalyzer{architecture: ArchitectureRules()}
}

func (a *ConventionAnalyzer) Name() string { return "convention" }

func (a *ConventionAnalyzer) Analyze(ctx *Context) []model.Feedback {
	var out []model.Feedback
	out = append(out, a.checkFileNaming(ctx)...)
	out = append(out, a.checkArchitecture(ctx)...)
	out = append(out, a.checkDuplicates(ctx)...)
	out = append(out, a.checkImports(ctx)...)
	return out
}

func (a *ConventionAnalyzer) checkFileNaming(ctx *Context) []model.Feedback {
	var out []model.Feedback
	for _, f := range ctx.Files {
		if ctx.Skip(f) {
			continue
		}
		base := f.Filename
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
			continue
		}

		switch f.Extension() {
		case "py":
			if !snakeCaseFileRE.MatchString(base) && strings.ContainsAny(strings.TrimSuffix(base, ".py"), "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
				out = append(out, model.Feedback{
					File:       f.Filename,
					Severity:   model.SeverityNit,
					Category:   model.CategoryStyle,
					Title:      "File Naming Convention",
					Message:    fmt.Sprintf("Python file `%s` should use snake_case.", base),
					Suggestion: fmt.Sprintf("Rename to `%s`", toSnakeCase(base)),
				})
			}
		case "jsx", "tsx":
			stem := strings.TrimSuffix(base, "."+f.Extension())
			inComponents := strings.Contains(strings.ToLower(f.Filename), "component")
			if !pascalCaseBaseRE.MatchString(stem) && inComponents {
				out = append(out, model.Feedback{
					File:       f.Filename,
					Severity:   model.SeverityNit,
					Category:   model.CategoryStyle,
					Title:      "Component Naming Convention",
					Message:    fmt.Sprintf("React component file `%s` should use PascalCase.", base),
					Suggestion: fmt.Sprintf("Rename to `%s.%s`", toPascalCase(stem), f.Extension()),
				})
			}
		}
	}
	return out
}

func (a *ConventionAnalyzer) checkArchitecture(ctx *Context) []model.Feedback {
	var out []model.Feedback
	for _, f := range ctx.Files {
		if ctx.Skip(f) || f.Patch == "" {
			continue
		}
		lines := diffmap.AddedLines(f.Patch)
		if len(lines) == 0 {
			continue
		}
		out = append(out, MatchRules(a.architecture, f.Filename, lines)...)
	}
	return out
}

// checkDuplicates flags a function name declared in two different changed
// files. First declaration wins the claim on the name.
func (a *ConventionAnalyzer) checkDuplicates(ctx *Context) []model.Feedback {
	declaredIn := make(map[string]string)
	var out []model.Feedback

	for _, f := range ctx.Files {
		ext := f.Extension()
		if (ext != "py" && ext != "js" && ext != "ts") || f.Patch == "" {
			continue
		}
		for _, l := range diffmap.AddedLines(f.Patch) {
			m := funcDeclRE.FindStringSubmatch(l.Text)
			if m == nil {
				continue
			}
			name := m[2]
			if other, ok := declaredIn[name]; ok {
				if other != f.Filename {
					out = append(out, model.Feedback{
						File:       f.Filename,
						Line:       l.Number,
						Severity:   model.SeverityLow,
						Category:   model.CategoryArchitecture,
						Title:      "Potential Duplicate Function",
						Message:    fmt.Sprintf("Function `%s` also exists in `%s`.", name, other),
						Suggestion: "Consider consolidating duplicate logic or renaming for clarity.",
					})
				}
			} else {
				declaredIn[name] = f.Filename
			}
		}
	}
	return out
}

// checkImports reports Python files whose added imports from the same package
// are split by unrelated imports. One report per file.
func (a *ConventionAnalyzer) checkImports(ctx *Context) []model.Feedback {
	var out []model.Feedback
	for _, f := range ctx.Files {
		if f.Extension() != "py" || f.Patch == "" {
			continue
		}

		var packages []string
		for _, l := range diffmap.AddedLines(f.Patch) {
			if m := importLineRE.FindStringSubmatch(l.Text); m != nil {
				packages = append(packages, m[1])
			}
		}
		if len(packages) <= 5 {
			continue
		}

		seenAt := make(map[string]int)
		for i, pkg := range packages {
			if last, ok := seenAt[pkg]; ok && i-last > 1 {
				out = append(out, model.Feedback{
					File:       f.Filename,
					Severity:   model.SeverityNit,
					Category:   model.CategoryStyle,
					Title:      "Import Organization",
					Message:    fmt.Sprintf("Imports from `%s` are not grouped together.", pkg),
					Suggestion: "Group imports by package: standard library, third-party, then local.",
				})
				break
			}
			seenAt[pkg] = i
		}
	}
	return out
}

func toSnakeCase(name string) string {
	base := name
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base = name[:i]
		ext = name[i+1:]
	}
	result := strings.ToLower(camelBoundaryRE.ReplaceAllString(base, "${1}_${2}"))
	if ext == "" {
		return result
	}
	return result + "." + ext
}

func toPascalCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}
