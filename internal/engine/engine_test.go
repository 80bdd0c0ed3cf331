package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/llm"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

type fakeHost struct {
	pr    model.PullRequest
	files []model.ChangedFile
	diff  string

	postedBody     string
	postedBlocking bool
	postErr        error
}

func (h *fakeHost) GetPullRequest(ctx context.Context, number int) (model.PullRequest, error) {
	return h.pr, nil
}

func (h *fakeHost) ListFiles(ctx context.Context, number int) ([]model.ChangedFile, error) {
	return h.files, nil
}

func (h *fakeHost) GetDiff(ctx context.Context, number int) (string, error) {
	return h.diff, nil
}

func (h *fakeHost) PostReview(ctx context.Context, number int, body string, blocking bool) error {
	h.postedBody = body
	h.postedBlocking = blocking
	return h.postErr
}

type fakeReviewer struct {
	result llm.Result
	err    error
}

func (r *fakeReviewer) Analyze(ctx context.Context, req llm.Request) (llm.Result, error) {
	return r.result, r.err
}

type fakeStore struct {
	saved *model.ReviewResult
	err   error
}

func (s *fakeStore) SaveReview(ctx context.Context, r *model.ReviewResult, diff string) (string, error) {
	s.saved = r
	return "doc-1", s.err
}

type fakeQueue struct {
	published string
	enqueued  string
}

func (q *fakeQueue) PublishReview(ctx context.Context, r *model.ReviewResult, documentID string) (int64, error) {
	q.published = documentID
	return 1, nil
}

func (q *fakeQueue) Enqueue(ctx context.Context, documentID string, priority int) (int64, error) {
	q.enqueued = documentID
	return 1, nil
}

func testConfig() config.Config {
	return config.Config{
		GitHubToken: "token",
		OpenAIKey:   "key",
		PRNumber:    42,
		Repo:        "acme/webapp",
		Review:      config.DefaultReview(),
	}
}

const vulnerablePatch = `@@ -10,2 +10,3 @@ def get_user(user_id):
 	conn = get_connection()
 	cursor = conn.cursor()
+	cursor.execute(f"SELECT * FROM users WHERE id = {user_id}")
`

func vulnerableHost() *fakeHost {
	return &fakeHost{
		pr: model.PullRequest{
			Number: 42,
			Title:  "feat(db): add user lookup",
			Body:   "Adds a user lookup helper for the session layer.",
		},
		files: []model.ChangedFile{
			{Filename: "app/db.py", Status: "modified", Additions: 1, Patch: vulnerablePatch},
		},
		diff: "diff --git a/app/db.py b/app/db.py\n" + vulnerablePatch,
	}
}

func TestRunPostsBlockingReview(t *testing.T) {
	host := vulnerableHost()
	ai := &fakeReviewer{result: llm.Result{Summary: "One injection risk.", Positives: []string{"Small change."}}}

	result, err := New(testConfig(), host, ai).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !host.postedBlocking {
		t.Error("HIGH finding should request changes")
	}
	if !strings.Contains(host.postedBody, "SQL Injection") {
		t.Error("posted body missing the security finding")
	}
	if result.Summary != "One injection risk." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if result.OverallStatus() != model.StatusChangesRequested {
		t.Errorf("unexpected status: %s", result.OverallStatus())
	}
	if result.Metrics.FilesChanged != 1 || result.Metrics.LinesAdded != 1 {
		t.Errorf("unexpected metrics: %+v", result.Metrics)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.GitHubToken = ""
	cfg.PRNumber = 0

	_, err := New(cfg, vulnerableHost(), &fakeReviewer{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "GITHUB_TOKEN") || !strings.Contains(err.Error(), "PR_NUMBER") {
		t.Errorf("error should name the missing settings: %v", err)
	}
}

func TestRunSurvivesAIFailure(t *testing.T) {
	host := vulnerableHost()
	ai := &fakeReviewer{err: errors.New("rate limited")}

	result, err := New(testConfig(), host, ai).Run(context.Background())
	if err != nil {
		t.Fatalf("AI failure must not abort the run: %v", err)
	}

	if !strings.Contains(result.Summary, "AI analysis unavailable") {
		t.Errorf("summary should note the AI failure: %q", result.Summary)
	}
	// Pattern findings still post.
	if !strings.Contains(host.postedBody, "SQL Injection") {
		t.Error("pattern findings missing after AI failure")
	}
}

func TestRunMergesAIFindings(t *testing.T) {
	host := vulnerableHost()
	ai := &fakeReviewer{result: llm.Result{
		Feedbacks: []model.Feedback{{
			File:     "app/db.py",
			Line:     11,
			Severity: model.SeverityMedium,
			Category: model.CategoryBestPractice,
			Title:    "Missing error handling",
			Message:  "Cursor errors are not handled.",
		}},
		Summary: "ok",
	}}

	result, err := New(testConfig(), host, ai).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, fb := range result.Feedbacks {
		if fb.Title == "Missing error handling" {
			found = true
		}
	}
	if !found {
		t.Errorf("AI finding missing from aggregated result: %v", result.Feedbacks)
	}
}

func TestRunPersistsWhenStorageAttached(t *testing.T) {
	host := vulnerableHost()
	store := &fakeStore{}
	queue := &fakeQueue{}

	_, err := New(testConfig(), host, &fakeReviewer{}).
		WithStorage(store, queue).
		Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if store.saved == nil {
		t.Fatal("review not saved")
	}
	if queue.published != "doc-1" || queue.enqueued != "doc-1" {
		t.Errorf("queue not fed: published=%q enqueued=%q", queue.published, queue.enqueued)
	}
}

func TestRunStorageFailureNonFatal(t *testing.T) {
	host := vulnerableHost()
	store := &fakeStore{err: errors.New("mongo down")}
	queue := &fakeQueue{}

	_, err := New(testConfig(), host, &fakeReviewer{}).
		WithStorage(store, queue).
		Run(context.Background())
	if err != nil {
		t.Fatalf("storage failure must not abort the run: %v", err)
	}
	if queue.published != "" {
		t.Error("events must not publish after a failed save")
	}
}

func TestConfigOverridesTitleAndBody(t *testing.T) {
	host := vulnerableHost()
	cfg := testConfig()
	cfg.PRTitle = "bad title with no prefix"

	result, _, err := New(cfg, host, &fakeReviewer{}).Review(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.PRTitle != "bad title with no prefix" {
		t.Errorf("config title override ignored: %q", result.PRTitle)
	}
	found := false
	for _, fb := range result.Feedbacks {
		if fb.Title == "PR Title Format" {
			found = true
		}
	}
	if !found {
		t.Error("overridden title should fail the format check")
	}
}
