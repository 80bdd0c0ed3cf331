package analysis

import (
	"log"
	"regexp"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// MatchMode selects how a rule is evaluated against a file's added lines.
type MatchMode int

const (
	// MatchLine evaluates the rule against every added line independently.
	MatchLine MatchMode = iota
	// MatchWindow evaluates the rule against the newline-joined added lines,
	// for constructs that span lines.
	MatchWindow
)

// Rule is one compiled pattern rule.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Severity    model.Severity
	Category    model.Category
	Message     string
	Suggestion  string
	FilePattern *regexp.Regexp // nil means the rule applies to every file
	Mode        MatchMode
}

// AppliesTo reports whether the rule's file-name gate passes. Pattern
// matching is only attempted after this gate.
func (r Rule) AppliesTo(filename string) bool {
	return r.FilePattern == nil || r.FilePattern.MatchString(filename)
}

// ruleSpec is the literal form of a rule before compilation.
type ruleSpec struct {
	name        string
	regex       string
	severity    string
	message     string
	suggestion  string
	filePattern string
	mode        MatchMode
}

// extensionLanguages maps file extensions to rule-table languages.
var extensionLanguages = map[string]string{
	"py":  "python",
	"js":  "javascript",
	"jsx": "javascript",
	"mjs": "javascript",
	"cjs": "javascript",
	"ts":  "typescript",
	"tsx": "typescript",
}

// LanguageForFile returns the rule-table language for a file, or "" when the
// extension is not supported.
func LanguageForFile(f model.ChangedFile) string {
	return extensionLanguages[f.Extension()]
}

// Built-in security rules. Language-independent: the patterns target idioms
// that show up across ecosystems, matched per added line.
var securityRuleSpecs = []ruleSpec{
	{
		name:       "SQL Injection (String Format)",
		regex:      `execute\s*\(\s*f["']|execute\s*\([^)]*%|execute\s*\([^)]*\.format\(`,
		severity:   "HIGH",
		message:    "Potential SQL injection vulnerability. User input may be directly interpolated into SQL query.",
		suggestion: "Use parameterized queries: `cursor.execute('SELECT * FROM users WHERE id = ?', (user_id,))`",
	},
	{
		name:       "SQL Injection (String Concat)",
		regex:      `["']SELECT\s.*["']\s*\+|["']INSERT\s.*["']\s*\+|["']UPDATE\s.*["']\s*\+|["']DELETE\s.*["']\s*\+`,
		severity:   "HIGH",
		message:    "Potential SQL injection. SQL query is being built with string concatenation.",
		suggestion: "Use parameterized queries or an ORM instead of string concatenation.",
	},
	{
		name:       "XSS - innerHTML",
		regex:      `\.innerHTML\s*=`,
		severity:   "HIGH",
		message:    "Setting innerHTML with dynamic content can lead to XSS vulnerabilities.",
		suggestion: "Use textContent for text, or sanitize HTML content before insertion.",
	},
	{
		name:       "XSS - dangerouslySetInnerHTML",
		regex:      `dangerouslySetInnerHTML\s*=\s*\{`,
		severity:   "MEDIUM",
		message:    "Using dangerouslySetInnerHTML - ensure content is properly sanitized.",
		suggestion: "Sanitize HTML using DOMPurify or similar library before rendering.",
	},
	{
		name:       "Hardcoded Credentials",
		regex:      `(password|passwd|pwd|secret|api_key|apikey|api_secret|auth_token|access_token)\s*=\s*["'][^"']{8,}["']`,
		severity:   "HIGH",
		message:    "Possible hardcoded credential or secret detected.",
		suggestion: "Move secrets to environment variables or a secure vault.",
	},
	{
		name:       "Hardcoded AWS Key",
		regex:      `AKIA[0-9A-Z]{16}`,
		severity:   "HIGH",
		message:    "Possible AWS Access Key ID detected in code.",
		suggestion: "Remove hardcoded AWS keys. Use IAM roles or environment variables.",
	},
	{
		name:       "Private Key",
		regex:      `-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`,
		severity:   "HIGH",
		message:    "Private key detected in code!",
		suggestion: "Never commit private keys. Add to .gitignore and use secrets management.",
	},
	{
		name:       "Eval Usage",
		regex:      `\beval\s*\([^)]+\)`,
		severity:   "MEDIUM",
		message:    "Use of eval() can execute arbitrary code and is a security risk.",
		suggestion: "Avoid eval(). Use safer alternatives like JSON.parse() or ast.literal_eval().",
	},
	{
		name:       "Exec Usage",
		regex:      `\bexec\s*\([^)]+\)`,
		severity:   "MEDIUM",
		message:    "Use of exec() can execute arbitrary code and is a security risk.",
		suggestion: "Avoid exec(). Consider restructuring code to avoid dynamic code execution.",
	},
	{
		name:       "Shell Injection",
		regex:      `subprocess\.(call|run|Popen)\s*\([^)]*shell\s*=\s*True`,
		severity:   "HIGH",
		message:    "Using shell=True with subprocess can lead to shell injection.",
		suggestion: "Use shell=False and pass arguments as a list: subprocess.run(['cmd', 'arg1'])",
	},
	{
		name:       "os.system Usage",
		regex:      `os\.system\s*\([^)]+\)`,
		severity:   "MEDIUM",
		message:    "os.system() is vulnerable to shell injection.",
		suggestion: "Use subprocess.run() with shell=False instead.",
	},
	{
		name:       "Pickle Deserialization",
		regex:      `pickle\.loads?\s*\(`,
		severity:   "MEDIUM",
		message:    "Pickle deserialization can execute arbitrary code if data is untrusted.",
		suggestion: "Only unpickle data from trusted sources. Consider using JSON for untrusted data.",
	},
	{
		name:       "Debug Mode in Production",
		regex:      `DEBUG\s*=\s*True|app\.run\([^)]*debug\s*=\s*True`,
		severity:   "MEDIUM",
		message:    "Debug mode should be disabled in production.",
		suggestion: "Use environment variable: DEBUG = os.getenv('DEBUG', 'False') == 'True'",
	},
	{
		name:       "Console.log with Sensitive Data",
		regex:      `console\.log\([^)]*(password|secret|token|key|credential)`,
		severity:   "LOW",
		message:    "Logging potentially sensitive data to console.",
		suggestion: "Remove or redact sensitive data from logs.",
	},
}

// Built-in performance rules. Windowed: the loop header and the offending
// call usually land on different lines.
var performanceRuleSpecs = []ruleSpec{
	{
		name:       "N+1 Query Pattern",
		regex:      `for\s+\w+\s+in\s+\w+[^:]*:\s*\n\s*.*\.(query|execute|find|get|fetch)`,
		severity:   "MEDIUM",
		message:    "Possible N+1 query pattern detected - database query inside a loop.",
		suggestion: "Fetch all needed data before the loop, or use eager loading/joins.",
		mode:       MatchWindow,
	},
	{
		name:       "Synchronous File Read in Loop",
		regex:      `for\s+\w+\s+in\s+\w+[^:]*:\s*\n\s*.*open\s*\(`,
		severity:   "LOW",
		message:    "File operations inside a loop can be slow.",
		suggestion: "Consider batching file operations or using async I/O.",
		mode:       MatchWindow,
	},
	{
		name:       "Large List Append Loop",
		regex:      `for\s+\w+\s+in\s+\w+[^:]*:\s*\n\s*\w+\.append\(`,
		severity:   "NIT",
		message:    "Building list with append in loop - consider list comprehension.",
		suggestion: "Use list comprehension: [item for item in iterable]",
		mode:       MatchWindow,
	},
	{
		name:       "String Concatenation in Loop",
		regex:      `for\s+\w+\s+in\s+\w+[^:]*:\s*\n\s*\w+\s*\+=\s*["']`,
		severity:   "LOW",
		message:    "String concatenation in loop is inefficient in Python.",
		suggestion: "Use ''.join(list_of_strings) instead.",
		mode:       MatchWindow,
	},
	{
		name:       "Blocking API Call",
		regex:      `requests\.(get|post|put|delete|patch)\s*\(`,
		severity:   "NIT",
		message:    "Synchronous HTTP request detected.",
		suggestion: "Consider using async HTTP client (httpx, aiohttp) for better concurrency.",
	},
}

// Built-in style anti-pattern rules, per language.
var styleRuleSpecs = map[string][]ruleSpec{
	"python": {
		{
			name:       "Bare except",
			regex:      `except\s*:`,
			severity:   "MEDIUM",
			message:    "Bare except clause catches all exceptions including KeyboardInterrupt.",
			suggestion: "Use specific exceptions: `except Exception:` or `except ValueError:`",
		},
		{
			name:       "Mutable default argument",
			regex:      `def\s+\w+\s*\([^)]*=\s*(\[\]|\{\})\s*[,)]`,
			severity:   "MEDIUM",
			message:    "Mutable default argument can lead to unexpected behavior.",
			suggestion: "Use None as default: `def func(items=None): items = items or []`",
		},
		{
			name:       "Star import",
			regex:      `from\s+\w+\s+import\s+\*`,
			severity:   "LOW",
			message:    "Star imports pollute the namespace and make code harder to understand.",
			suggestion: "Import specific names: `from module import name1, name2`",
		},
		{
			name:       "TODO marker",
			regex:      `#\s*TODO\b`,
			severity:   "NIT",
			message:    "TODO comment left in code.",
			suggestion: "Link to an issue: `# TODO(#123): description`",
		},
		{
			name:       "FIXME in code",
			regex:      `#\s*FIXME`,
			severity:   "LOW",
			message:    "FIXME comment indicates broken code that should be fixed.",
			suggestion: "Fix the issue or create a tracked issue for it.",
		},
		{
			name:       "Print statement",
			regex:      `^\s*print\s*\(`,
			severity:   "NIT",
			message:    "Print statement found. Consider using logging instead.",
			suggestion: "Use logging module: `logger.info()` or `logger.debug()`",
		},
	},
	"javascript": {
		{
			name:       "Console.log",
			regex:      `console\.(log|debug|info)\s*\(`,
			severity:   "LOW",
			message:    "Console statement found. Should be removed before production.",
			suggestion: "Remove console statements or use a proper logger.",
		},
		{
			name:       "var keyword",
			regex:      `\bvar\s+\w+`,
			severity:   "LOW",
			message:    "Using 'var' instead of 'let' or 'const'.",
			suggestion: "Use 'const' for constants, 'let' for variables.",
		},
		{
			name:       "== comparison",
			regex:      `[^!=]==[^=]`,
			severity:   "LOW",
			message:    "Using loose equality (==) instead of strict equality (===).",
			suggestion: "Use strict equality === for type-safe comparison.",
		},
		{
			name:       "TODO marker",
			regex:      `//\s*TODO\b`,
			severity:   "NIT",
			message:    "TODO comment left in code.",
			suggestion: "Link to an issue: `// TODO(#123): description`",
		},
		{
			name:       "Alert usage",
			regex:      `\balert\s*\(`,
			severity:   "MEDIUM",
			message:    "Using alert() - should be removed for production.",
			suggestion: "Use a proper modal/dialog component.",
		},
	},
	"typescript": {
		{
			name:       "Any type",
			regex:      `:\s*any\b`,
			severity:   "LOW",
			message:    "Using 'any' type defeats the purpose of TypeScript.",
			suggestion: "Use a specific type or 'unknown' if type is truly unknown.",
		},
		{
			name:       "Type assertion with as any",
			regex:      `as\s+any\b`,
			severity:   "LOW",
			message:    "Type assertion to 'any' bypasses type checking.",
			suggestion: "Use proper type narrowing or a more specific type.",
		},
		{
			name:       "Non-null assertion",
			regex:      `\w+![\.\[]`,
			severity:   "NIT",
			message:    "Non-null assertion (!) can hide potential null errors.",
			suggestion: "Use optional chaining (?.) or proper null checks.",
		},
	},
}

// Built-in architecture rules, gated on file names. Multi-line constructs
// run windowed; everything else per line.
var architectureRuleSpecs = []ruleSpec{
	{
		name:        "Direct Database Access in Controller",
		regex:       `(cursor\.execute|\.query\(|db\.(find|insert|update|delete))`,
		severity:    "MEDIUM",
		message:     "Direct database access in controller layer violates separation of concerns.",
		suggestion:  "Move database logic to a service or repository layer.",
		filePattern: `(controller|view|handler)\.`,
	},
	{
		// The leading _?[a-z0-9] keeps dunder methods like __init__ out.
		name:        "Business Logic in Model",
		regex:       `def\s+_?[a-z0-9]\w*.*\n\s+.*(if|for|while|try)`,
		severity:    "LOW",
		message:     "Complex business logic in model file. Models should primarily define structure.",
		suggestion:  "Consider moving complex logic to a service layer.",
		filePattern: `models?\.`,
		mode:        MatchWindow,
	},
	{
		name:        "HTTP Request in Service",
		regex:       `(requests\.(get|post)|fetch\(|axios\.)`,
		severity:    "NIT",
		message:     "HTTP requests in service layer.",
		suggestion:  "Consider creating a dedicated API client class for external requests.",
		filePattern: `service\.`,
	},
	{
		name:        "Circular Import Risk",
		regex:       `from\s+\.{3,}`,
		severity:    "LOW",
		message:     "Deep relative imports may indicate potential circular dependencies.",
		suggestion:  "Consider restructuring to reduce deep imports.",
		filePattern: `\.py$`,
	},
}

// compileRules turns literal specs into compiled rules. Every pattern is
// matched case-insensitively. Specs with invalid regexes are dropped with a
// warning: one bad rule must not disable the table. Unrecognized severity
// labels map to defaultSeverity.
func compileRules(specs []ruleSpec, category model.Category, defaultSeverity model.Severity) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		re, err := regexp.Compile(`(?i)` + s.regex)
		if err != nil {
			log.Printf("warning: dropping rule %q: %v", s.name, err)
			continue
		}
		rule := Rule{
			Name:       s.name,
			Pattern:    re,
			Severity:   model.ParseSeverity(s.severity, defaultSeverity),
			Category:   category,
			Message:    s.message,
			Suggestion: s.suggestion,
			Mode:       s.mode,
		}
		if s.filePattern != "" {
			fre, err := regexp.Compile(`(?i)` + s.filePattern)
			if err != nil {
				log.Printf("warning: dropping rule %q: bad file pattern: %v", s.name, err)
				continue
			}
			rule.FilePattern = fre
		}
		rules = append(rules, rule)
	}
	return rules
}

// SecurityRules returns the built-in security table with the configured
// custom patterns appended. Custom rules never override built-ins; unknown
// custom severities default to MEDIUM here.
func SecurityRules(custom []config.SecurityPattern) []Rule {
	rules := compileRules(securityRuleSpecs, model.CategorySecurity, model.SeverityMedium)
	for _, cp := range custom {
		re, err := regexp.Compile(`(?i)` + cp.Regex)
		if err != nil {
			log.Printf("warning: dropping custom security rule %q: %v", cp.Name, err)
			continue
		}
		rules = append(rules, Rule{
			Name:     cp.Name,
			Pattern:  re,
			Severity: model.ParseSeverity(cp.Severity, model.SeverityMedium),
			Category: model.CategorySecurity,
			Message:  cp.Description,
		})
	}
	return rules
}

// PerformanceRules returns the built-in performance table.
func PerformanceRules() []Rule {
	return compileRules(performanceRuleSpecs, model.CategoryPerformance, model.SeverityLow)
}

// StyleRules returns the built-in style table for a language. Unknown
// severities default to LOW in the style analyzer.
func StyleRules(language string) []Rule {
	return compileRules(styleRuleSpecs[language], model.CategoryStyle, model.SeverityLow)
}

// ArchitectureRules returns the file-gated architecture table.
func ArchitectureRules() []Rule {
	return compileRules(architectureRuleSpecs, model.CategoryArchitecture, model.SeverityLow)
}
