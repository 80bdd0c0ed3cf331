// Package analysis implements the rule-based review analyzers.
package analysis

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// Context carries everything an analyzer may look at. It is constructed once
// per run and read-only from then on.
type Context struct {
	PR     model.PullRequest
	Files  []model.ChangedFile
	Diff   string
	Config config.ReviewConfig
}

// SourceFiles returns the non-test changed files.
func (c *Context) SourceFiles() []model.ChangedFile {
	var out []model.ChangedFile
	for _, f := range c.Files {
		if !f.IsTestFile() {
			out = append(out, f)
		}
	}
	return out
}

// TestFiles returns the test changed files.
func (c *Context) TestFiles() []model.ChangedFile {
	var out []model.ChangedFile
	for _, f := range c.Files {
		if f.IsTestFile() {
			out = append(out, f)
		}
	}
	return out
}

var uiExtensions = map[string]bool{
	"css": true, "scss": true, "sass": true, "less": true,
	"html": true, "jsx": true, "tsx": true, "vue": true, "svelte": true,
}

// HasUIChanges reports whether any changed file is UI-related.
func (c *Context) HasUIChanges() bool {
	for _, f := range c.Files {
		if uiExtensions[f.Extension()] {
			return true
		}
	}
	return false
}

// Skip reports whether a file matches the configured ignore patterns.
func (c *Context) Skip(f model.ChangedFile) bool {
	return matchAny(c.Config.Ignore, f.Filename)
}

// matchAny matches name against glob patterns, trying both the full path and
// the base name so "*.lock" catches "deps/Cargo.lock".
func matchAny(patterns []string, name string) bool {
	base := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		base = name[i+1:]
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Analyzer is one review pass producing feedback from the context.
type Analyzer interface {
	Name() string
	Analyze(ctx *Context) []model.Feedback
}

// DefaultAnalyzers returns the full analyzer set in its canonical order.
func DefaultAnalyzers(rc config.ReviewConfig) []Analyzer {
	return []Analyzer{
		NewStructureAnalyzer(),
		NewStaticAnalyzer(rc),
		NewRiskAnalyzer(rc),
		NewTestAnalyzer(),
		NewDocAnalyzer(),
		NewConventionAnalyzer(),
	}
}

// Run executes the analyzers concurrently and returns their combined output
// in analyzer order. Analyzers share no mutable state; the per-analyzer
// result slots are the fan-in barrier, so the combined order is
// deterministic regardless of scheduling.
func Run(ctx *Context, analyzers []Analyzer) []model.Feedback {
	results := make([][]model.Feedback, len(analyzers))

	var wg sync.WaitGroup
	for i, a := range analyzers {
		wg.Add(1)
		go func(i int, a Analyzer) {
			defer wg.Done()
			results[i] = a.Analyze(ctx)
		}(i, a)
	}
	wg.Wait()

	var all []model.Feedback
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}
