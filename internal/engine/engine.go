// Package engine orchestrates a full review run: fetch, analyze, post,
// persist.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/DifanaDAP/ai-reviewer/internal/analysis"
	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/llm"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
	"github.com/DifanaDAP/ai-reviewer/internal/report"
)

// Host is the PR hosting platform the engine reviews against.
type Host interface {
	GetPullRequest(ctx context.Context, number int) (model.PullRequest, error)
	ListFiles(ctx context.Context, number int) ([]model.ChangedFile, error)
	GetDiff(ctx context.Context, number int) (string, error)
	PostReview(ctx context.Context, number int, body string, blocking bool) error
}

// Reviewer is the AI analysis pass.
type Reviewer interface {
	Analyze(ctx context.Context, req llm.Request) (llm.Result, error)
}

// Store persists completed reviews.
type Store interface {
	SaveReview(ctx context.Context, r *model.ReviewResult, diff string) (string, error)
}

// Queue feeds the downstream vectorization pipeline.
type Queue interface {
	PublishReview(ctx context.Context, r *model.ReviewResult, documentID string) (int64, error)
	Enqueue(ctx context.Context, documentID string, priority int) (int64, error)
}

// Engine runs reviews. Store and Queue are optional; every collaborator
// failure past configuration validation is non-fatal and degrades the run
// instead of aborting it.
type Engine struct {
	cfg   config.Config
	host  Host
	ai    Reviewer
	store Store
	queue Queue
}

func New(cfg config.Config, host Host, ai Reviewer) *Engine {
	return &Engine{cfg: cfg, host: host, ai: ai}
}

// WithStorage attaches the optional persistence collaborators.
func (e *Engine) WithStorage(store Store, queue Queue) *Engine {
	e.store = store
	e.queue = queue
	return e
}

// Run executes one full review and posts the result. The returned
// ReviewResult is always populated on success, whether or not posting found
// anything.
func (e *Engine) Run(ctx context.Context) (*model.ReviewResult, error) {
	result, diff, err := e.Review(ctx)
	if err != nil {
		return nil, err
	}

	body := report.Markdown(result)
	blocking := result.OverallStatus().Blocking()
	if err := e.host.PostReview(ctx, e.cfg.PRNumber, body, blocking); err != nil {
		return nil, fmt.Errorf("post review: %w", err)
	}

	e.persist(ctx, result, diff)
	return result, nil
}

// Review performs the analysis without posting or persisting. Used by the
// dry-run path and the HTTP API.
func (e *Engine) Review(ctx context.Context) (*model.ReviewResult, string, error) {
	if errs := e.cfg.Validate(); len(errs) > 0 {
		return nil, "", errors.Join(errs...)
	}

	pr, err := e.host.GetPullRequest(ctx, e.cfg.PRNumber)
	if err != nil {
		return nil, "", fmt.Errorf("fetch pull request: %w", err)
	}
	if e.cfg.PRTitle != "" {
		pr.Title = e.cfg.PRTitle
	}
	if e.cfg.PRBody != "" {
		pr.Body = e.cfg.PRBody
	}

	files, err := e.host.ListFiles(ctx, e.cfg.PRNumber)
	if err != nil {
		return nil, "", fmt.Errorf("fetch changed files: %w", err)
	}
	diff, err := e.host.GetDiff(ctx, e.cfg.PRNumber)
	if err != nil {
		return nil, "", fmt.Errorf("fetch diff: %w", err)
	}

	log.Printf("reviewing PR #%d in %s: %d changed files", e.cfg.PRNumber, e.cfg.Repo, len(files))

	result := e.Analyze(ctx, pr, files, diff)
	result.PRNumber = e.cfg.PRNumber
	result.Repo = e.cfg.Repo
	return result, diff, nil
}

// Analyze runs the rule analyzers and the AI pass over already-fetched PR
// data and aggregates the combined feedback.
func (e *Engine) Analyze(ctx context.Context, pr model.PullRequest, files []model.ChangedFile, diff string) *model.ReviewResult {
	actx := &analysis.Context{
		PR:     pr,
		Files:  files,
		Diff:   diff,
		Config: e.cfg.Review,
	}

	feedbacks := analysis.Run(actx, analysis.DefaultAnalyzers(e.cfg.Review))
	log.Printf("pattern analysis found %d issues", len(feedbacks))

	metrics := buildMetrics(files)

	summary := ""
	var positives []string
	aiResult, err := e.ai.Analyze(ctx, llm.Request{
		Title:        pr.Title,
		Description:  pr.Body,
		Diff:         diff,
		FileCount:    metrics.FilesChanged,
		LinesAdded:   metrics.LinesAdded,
		LinesDeleted: metrics.LinesDeleted,
	})
	if err != nil {
		log.Printf("warning: AI analysis failed: %v", err)
		summary = aiFailureNote(err)
	} else {
		feedbacks = append(feedbacks, aiResult.Feedbacks...)
		summary = aiResult.Summary
		positives = aiResult.Positives
		log.Printf("AI analysis found %d additional issues", len(aiResult.Feedbacks))
	}

	return &model.ReviewResult{
		PRTitle:   pr.Title,
		Timestamp: time.Now().UTC(),
		Metrics:   metrics,
		Feedbacks: analysis.Aggregate(feedbacks),
		Summary:   summary,
		Positives: positives,
	}
}

// persist saves the result and announces it. Failures are logged and
// swallowed: storage never blocks a posted review.
func (e *Engine) persist(ctx context.Context, result *model.ReviewResult, diff string) {
	if e.store == nil {
		return
	}

	docID, err := e.store.SaveReview(ctx, result, diff)
	if err != nil {
		log.Printf("warning: saving review failed: %v", err)
		return
	}
	log.Printf("review saved with id %s", docID)

	if e.queue == nil {
		return
	}
	if _, err := e.queue.PublishReview(ctx, result, docID); err != nil {
		log.Printf("warning: publishing review event failed: %v", err)
	}
	if _, err := e.queue.Enqueue(ctx, docID, 0); err != nil {
		log.Printf("warning: queueing for vectorization failed: %v", err)
	}
}

func buildMetrics(files []model.ChangedFile) model.PRMetrics {
	m := model.PRMetrics{FilesChanged: len(files)}
	for _, f := range files {
		m.LinesAdded += f.Additions
		m.LinesDeleted += f.Deletions
		if f.IsTestFile() {
			m.TestFilesChanged++
		} else {
			m.SourceFilesChanged++
		}
	}
	m.TotalChanges = m.LinesAdded + m.LinesDeleted
	return m
}

func aiFailureNote(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "AI analysis unavailable: " + msg
}
