package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

type stubAnalyzer struct {
	lastFiles []model.ChangedFile
	result    *model.ReviewResult
}

func (a *stubAnalyzer) Analyze(ctx context.Context, pr model.PullRequest, files []model.ChangedFile, diff string) *model.ReviewResult {
	a.lastFiles = files
	if a.result != nil {
		return a.result
	}
	return &model.ReviewResult{PRTitle: pr.Title, Timestamp: time.Now()}
}

func newTestServer(analyzer Analyzer, review ReviewFunc) *Server {
	if review == nil {
		review = func(ctx context.Context, prNumber int) error { return nil }
	}
	return NewServer(analyzer, review)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestWebhookQueuesReview(t *testing.T) {
	var mu sync.Mutex
	var reviewed []int
	done := make(chan struct{})

	srv := newTestServer(&stubAnalyzer{}, func(ctx context.Context, prNumber int) error {
		mu.Lock()
		reviewed = append(reviewed, prNumber)
		mu.Unlock()
		close(done)
		return nil
	})

	payload := `{"action": "opened", "pull_request": {"number": 42}, "repository": {"full_name": "acme/webapp"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("review was not triggered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reviewed) != 1 || reviewed[0] != 42 {
		t.Errorf("unexpected reviews: %v", reviewed)
	}
}

func TestWebhookIgnoresOtherActions(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, func(ctx context.Context, prNumber int) error {
		t.Error("review must not run for ignored actions")
		return nil
	})

	payload := `{"action": "closed", "pull_request": {"number": 42}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ignored") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestWebhookRejectsMissingNumber(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"action": "opened"}`))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

const rawDiff = `diff --git a/app/db.py b/app/db.py
index abc1234..def5678 100644
--- a/app/db.py
+++ b/app/db.py
@@ -10,2 +10,3 @@ def get_user(user_id):
 	conn = get_connection()
 	cursor = conn.cursor()
+	cursor.execute(f"SELECT * FROM users WHERE id = {user_id}")
`

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer := &stubAnalyzer{result: &model.ReviewResult{
		PRTitle: "feat: lookup",
		Feedbacks: []model.Feedback{{
			File:     "app/db.py",
			Line:     12,
			Severity: model.SeverityHigh,
			Category: model.CategorySecurity,
			Title:    "SQL Injection",
			Message:  "Interpolated query.",
		}},
	}}
	srv := newTestServer(analyzer, nil)

	body, _ := json.Marshal(analyzeRequest{Title: "feat: lookup", Diff: rawDiff})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(analyzer.lastFiles) != 1 || analyzer.lastFiles[0].Filename != "app/db.py" {
		t.Errorf("diff not split into changed files: %v", analyzer.lastFiles)
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" {
		t.Errorf("unexpected status: %q", resp.Status)
	}
	if !strings.Contains(resp.Markdown, "SQL Injection") {
		t.Error("markdown missing the finding")
	}
}

func TestAnalyzeRequiresDiff(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"title": "x"}`))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
