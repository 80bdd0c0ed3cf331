// Package config loads reviewer settings from environment variables and an
// optional .ai-reviewer.yml file. The Config is built once at startup and
// passed into every component; nothing reads configuration ambiently.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// StructureConfig validates PR title, description, and linked issues.
type StructureConfig struct {
	TitlePattern         string   `yaml:"title_pattern"`
	RequireDescription   bool     `yaml:"require_description"`
	MinDescriptionLength int      `yaml:"min_description_length"`
	RequireLinkedIssue   bool     `yaml:"require_linked_issue"`
	RequireScreenshotFor []string `yaml:"require_screenshot_for"`
}

// SizeConfig bounds PR size.
type SizeConfig struct {
	MaxFiles         int     `yaml:"max_files"`
	MaxLinesAdded    int     `yaml:"max_lines_added"`
	MaxLinesDeleted  int     `yaml:"max_lines_deleted"`
	WarningThreshold float64 `yaml:"warning_threshold"`
}

// TestingConfig drives test-coverage checks.
type TestingConfig struct {
	RequireTestsFor  []string `yaml:"require_tests_for"`
	TestFilePatterns []string `yaml:"test_file_patterns"`
}

// SecurityPattern is a user-supplied security rule merged with the built-ins.
type SecurityPattern struct {
	Name        string `yaml:"name"`
	Regex       string `yaml:"regex"`
	Severity    string `yaml:"severity"`
	Description string `yaml:"description"`
}

// SecurityConfig holds custom security patterns.
type SecurityConfig struct {
	Patterns []SecurityPattern `yaml:"patterns"`
}

// NamingRules maps declaration kinds to naming regexes for one language.
type NamingRules struct {
	Class    string `yaml:"class"`
	Function string `yaml:"function"`
	Constant string `yaml:"constant"`
}

// ReviewConfig is the behavior section of the configuration.
type ReviewConfig struct {
	Structure StructureConfig        `yaml:"pr_structure"`
	Size      SizeConfig             `yaml:"pr_size"`
	Testing   TestingConfig          `yaml:"testing"`
	Security  SecurityConfig         `yaml:"security"`
	Naming    map[string]NamingRules `yaml:"naming"`
	Ignore    []string               `yaml:"ignore"`
}

// Config is the full reviewer configuration: run identity plus behavior.
type Config struct {
	GitHubToken string
	OpenAIKey   string
	PRNumber    int
	Repo        string // owner/name
	PRTitle     string
	PRBody      string
	BaseSHA     string
	HeadSHA     string

	OpenAIModel string
	MaxTokens   int

	EnableStorage bool
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string

	Review ReviewConfig
}

// DefaultReview returns the built-in review behavior.
func DefaultReview() ReviewConfig {
	return ReviewConfig{
		Structure: StructureConfig{
			TitlePattern:         `^(feat|fix|docs|style|refactor|test|chore)(\(.+\))?:.+`,
			RequireDescription:   true,
			MinDescriptionLength: 20,
			RequireScreenshotFor: []string{"*.css", "*.html", "*.jsx", "*.tsx", "*.vue"},
		},
		Size: SizeConfig{
			MaxFiles:         20,
			MaxLinesAdded:    500,
			MaxLinesDeleted:  300,
			WarningThreshold: 0.7,
		},
		Testing: TestingConfig{
			RequireTestsFor: []string{"src/**/*.py", "src/**/*.js"},
			TestFilePatterns: []string{
				"test_*.py", "*_test.py", "tests/*.py",
				"*.test.js", "*.spec.js", "*.test.ts", "*.spec.ts",
			},
		},
		Naming: map[string]NamingRules{
			"python": {
				Class:    `^[A-Z][a-zA-Z0-9]*$`,
				Function: `^[a-z_][a-z0-9_]*$`,
				Constant: `^[A-Z][A-Z0-9_]*$`,
			},
			"javascript": {
				Class:    `^[A-Z][a-zA-Z0-9]*$`,
				Function: `^[a-z][a-zA-Z0-9]*$`,
				Constant: `^[A-Z][A-Z0-9_]*$`,
			},
		},
		Ignore: []string{
			"*.lock", "*.min.js", "*.min.css",
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
			"dist/*", "build/*", "node_modules/*", ".git/*",
		},
	}
}

// reviewConfigPaths are checked in order; the first that exists wins.
var reviewConfigPaths = []string{
	".ai-reviewer.yml",
	".ai-reviewer.yaml",
	".github/ai-reviewer.yml",
}

// Load builds the effective config: defaults, then the YAML file if present,
// then environment variables.
func Load() Config {
	cfg := Config{
		OpenAIModel:   "gpt-4o-mini",
		MaxTokens:     4096,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "ai_reviewer",
		RedisAddr:     "localhost:6379",
		Review:        DefaultReview(),
	}

	for _, path := range reviewConfigPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg.Review); err != nil {
			log.Printf("warning: failed to parse %s: %v", path, err)
			cfg.Review = DefaultReview()
			continue
		}
		applyReviewDefaults(&cfg.Review)
		break
	}

	mergeEnv(&cfg)
	return cfg
}

// applyReviewDefaults refills fields the YAML file left empty, so a partial
// file does not wipe out built-in behavior.
func applyReviewDefaults(rc *ReviewConfig) {
	def := DefaultReview()
	if rc.Structure.TitlePattern == "" {
		rc.Structure.TitlePattern = def.Structure.TitlePattern
	}
	if rc.Structure.MinDescriptionLength == 0 {
		rc.Structure.MinDescriptionLength = def.Structure.MinDescriptionLength
	}
	if len(rc.Structure.RequireScreenshotFor) == 0 {
		rc.Structure.RequireScreenshotFor = def.Structure.RequireScreenshotFor
	}
	if rc.Size.MaxFiles == 0 {
		rc.Size.MaxFiles = def.Size.MaxFiles
	}
	if rc.Size.MaxLinesAdded == 0 {
		rc.Size.MaxLinesAdded = def.Size.MaxLinesAdded
	}
	if rc.Size.MaxLinesDeleted == 0 {
		rc.Size.MaxLinesDeleted = def.Size.MaxLinesDeleted
	}
	if rc.Size.WarningThreshold == 0 {
		rc.Size.WarningThreshold = def.Size.WarningThreshold
	}
	if len(rc.Testing.TestFilePatterns) == 0 {
		rc.Testing.TestFilePatterns = def.Testing.TestFilePatterns
	}
	if len(rc.Testing.RequireTestsFor) == 0 {
		rc.Testing.RequireTestsFor = def.Testing.RequireTestsFor
	}
	if len(rc.Naming) == 0 {
		rc.Naming = def.Naming
	}
	if len(rc.Ignore) == 0 {
		rc.Ignore = def.Ignore
	}
}

func mergeEnv(cfg *Config) {
	env := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	env("GITHUB_TOKEN", &cfg.GitHubToken)
	env("OPENAI_API_KEY", &cfg.OpenAIKey)
	env("REPO", &cfg.Repo)
	env("PR_TITLE", &cfg.PRTitle)
	env("PR_BODY", &cfg.PRBody)
	env("BASE_SHA", &cfg.BaseSHA)
	env("HEAD_SHA", &cfg.HeadSHA)
	env("OPENAI_MODEL", &cfg.OpenAIModel)
	env("MONGODB_URI", &cfg.MongoURI)
	env("MONGODB_DATABASE", &cfg.MongoDatabase)
	env("REDIS_ADDR", &cfg.RedisAddr)
	env("REDIS_PASSWORD", &cfg.RedisPassword)

	if v := os.Getenv("PR_NUMBER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PRNumber = n
		}
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("ENABLE_STORAGE"); v != "" {
		cfg.EnableStorage = strings.EqualFold(v, "true")
	}
}

// RepoOwner returns the owner half of "owner/name".
func (c Config) RepoOwner() string {
	if i := strings.Index(c.Repo, "/"); i >= 0 {
		return c.Repo[:i]
	}
	return ""
}

// RepoName returns the name half of "owner/name".
func (c Config) RepoName() string {
	if i := strings.Index(c.Repo, "/"); i >= 0 {
		return c.Repo[i+1:]
	}
	return c.Repo
}

// Validate returns the configuration errors that make a run impossible.
// A non-empty result is the single fatal error class: without a review
// target there is nothing to analyze.
func (c Config) Validate() []error {
	var errs []error
	if c.GitHubToken == "" {
		errs = append(errs, fmt.Errorf("GITHUB_TOKEN is required"))
	}
	if c.OpenAIKey == "" {
		errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required"))
	}
	if c.PRNumber == 0 {
		errs = append(errs, fmt.Errorf("PR_NUMBER is required"))
	}
	if c.Repo == "" {
		errs = append(errs, fmt.Errorf("REPO is required"))
	}
	return errs
}
