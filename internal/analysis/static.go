package analysis

import (
	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/diffmap"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// StaticAnalyzer applies per-language style rules and naming checks to
// the added lines of every changed source file.
type StaticAnalyzer struct {
	styleRules map[string][]Rule
	naming     *NamingValidator
}

func NewStaticAnalyzer(rc config.ReviewConfig) *StaticAnalyzer {
	styles := make(map[string][]Rule)
	for _, lang := range []string{"python", "javascript", "typescript"} {
		styles[lang] = StyleRules(lang)
	}
	return &StaticAnalyzer{
		styleRules: styles,
		naming:     NewNamingValidator(rc.Naming),
	}
}

func (a *StaticAnalyzer) Name() string { return "static" }

func (a *StaticAnalyzer) Analyze(ctx *Context) []model.Feedback {
	var out []model.Feedback
	for _, f := range ctx.Files {
		if ctx.Skip(f) || f.Patch == "" {
			continue
		}
		lang := LanguageForFile(f)
		if lang == "" {
			continue
		}
		lines := diffmap.AddedLines(f.Patch)
		if len(lines) == 0 {
			continue
		}
		out = append(out, MatchRules(a.styleRules[lang], f.Filename, lines)...)
		out = append(out, a.naming.Check(f.Filename, lang, lines)...)
	}
	return out
}
