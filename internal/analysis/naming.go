package analysis

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/diffmap"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// declPatterns extract declared identifiers from a language's added lines.
var declPatterns = map[string]struct {
	class    *regexp.Regexp
	function *regexp.Regexp
	constant *regexp.Regexp
}{
	"python": {
		class:    regexp.MustCompile(`class\s+([A-Za-z_]\w*)`),
		function: regexp.MustCompile(`def\s+([A-Za-z_]\w*)`),
		// Module-level assignment with no indentation; only names containing
		// an uppercase letter are treated as intended constants.
		constant: regexp.MustCompile(`^([A-Za-z_]\w*)\s*=[^=]`),
	},
	"javascript": {
		class:    regexp.MustCompile(`class\s+([A-Za-z_$]\w*)`),
		function: regexp.MustCompile(`function\s+([A-Za-z_$]\w*)`),
	},
	"typescript": {
		class:    regexp.MustCompile(`class\s+([A-Za-z_$]\w*)`),
		function: regexp.MustCompile(`function\s+([A-Za-z_$]\w*)`),
	},
}

type namingRules struct {
	class    *regexp.Regexp
	function *regexp.Regexp
	constant *regexp.Regexp
}

// NamingValidator checks declared identifiers against per-language naming
// regexes and emits NIT style feedback when they fail.
type NamingValidator struct {
	rules map[string]namingRules
}

// NewNamingValidator compiles the configured naming regexes. Invalid
// regexes disable just that one check, not the validator.
func NewNamingValidator(naming map[string]config.NamingRules) *NamingValidator {
	compile := func(lang, kind, expr string) *regexp.Regexp {
		if expr == "" {
			return nil
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			log.Printf("warning: dropping %s %s naming rule: %v", lang, kind, err)
			return nil
		}
		return re
	}

	v := &NamingValidator{rules: make(map[string]namingRules)}
	for lang, nr := range naming {
		v.rules[lang] = namingRules{
			class:    compile(lang, "class", nr.Class),
			function: compile(lang, "function", nr.Function),
			constant: compile(lang, "constant", nr.Constant),
		}
		// TypeScript shares the JavaScript conventions unless configured.
		if lang == "javascript" {
			if _, ok := naming["typescript"]; !ok {
				v.rules["typescript"] = v.rules["javascript"]
			}
		}
	}
	return v
}

// exempt names: dunder specials and privacy-prefixed identifiers.
func exemptName(name string) bool {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	return strings.HasPrefix(name, "_")
}

func hasUpper(name string) bool {
	return strings.ToLower(name) != name
}

// Check scans one file's added lines and returns naming feedback.
func (v *NamingValidator) Check(filename, language string, lines []diffmap.AddedLine) []model.Feedback {
	decls, ok := declPatterns[language]
	if !ok {
		return nil
	}
	rules, ok := v.rules[language]
	if !ok {
		return nil
	}

	var out []model.Feedback
	report := func(line diffmap.AddedLine, kind, name, want string) {
		out = append(out, model.Feedback{
			File:     filename,
			Line:     line.Number,
			Severity: model.SeverityNit,
			Category: model.CategoryStyle,
			Title:    "Naming Convention",
			Message:  fmt.Sprintf("%s name `%s` does not match the configured pattern `%s`.", kind, name, want),
			Snippet:  strings.TrimSpace(line.Text),
		})
	}

	for _, l := range lines {
		if decls.class != nil && rules.class != nil {
			if m := decls.class.FindStringSubmatch(l.Text); m != nil {
				if name := m[1]; !exemptName(name) && !rules.class.MatchString(name) {
					report(l, "Class", name, rules.class.String())
				}
			}
		}
		if decls.function != nil && rules.function != nil {
			if m := decls.function.FindStringSubmatch(l.Text); m != nil {
				if name := m[1]; !exemptName(name) && !rules.function.MatchString(name) {
					report(l, "Function", name, rules.function.String())
				}
			}
		}
		if decls.constant != nil && rules.constant != nil {
			if m := decls.constant.FindStringSubmatch(l.Text); m != nil {
				name := m[1]
				if !exemptName(name) && hasUpper(name) && !rules.constant.MatchString(name) {
					report(l, "Constant", name, rules.constant.String())
				}
			}
		}
	}

	return out
}
