// Package api exposes the reviewer over HTTP: a webhook for hosted PR
// events and a direct analysis endpoint for raw diffs.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DifanaDAP/ai-reviewer/internal/diffmap"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
	"github.com/DifanaDAP/ai-reviewer/internal/report"
)

// reviewActions are the webhook actions that trigger a review.
var reviewActions = map[string]bool{
	"opened":           true,
	"synchronize":      true,
	"reopened":         true,
	"ready_for_review": true,
}

// Analyzer produces a review result from already-fetched PR data.
type Analyzer interface {
	Analyze(ctx context.Context, pr model.PullRequest, files []model.ChangedFile, diff string) *model.ReviewResult
}

// ReviewFunc runs a full hosted review for one PR number.
type ReviewFunc func(ctx context.Context, prNumber int) error

// Server routes reviewer HTTP traffic.
type Server struct {
	Router   *chi.Mux
	analyzer Analyzer
	review   ReviewFunc
	timeout  time.Duration
}

func NewServer(analyzer Analyzer, review ReviewFunc) *Server {
	s := &Server{
		analyzer: analyzer,
		review:   review,
		timeout:  5 * time.Minute,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.health)
	r.Post("/webhook", s.webhook)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
	})

	s.Router = r
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(addr string) error {
	log.Printf("reviewer API listening on %s", addr)
	return http.ListenAndServe(addr, s.Router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "ai-reviewer",
		"timestamp": time.Now().UTC(),
	})
}

type webhookPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// webhook accepts a pull_request event and reviews it asynchronously. The
// response only acknowledges receipt; review outcome lands on the PR itself.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !reviewActions[payload.Action] {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored", "action": payload.Action})
		return
	}

	number := payload.PullRequest.Number
	if number == 0 {
		number = payload.Number
	}
	if number == 0 {
		http.Error(w, "missing pull request number", http.StatusBadRequest)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.review(ctx, number); err != nil {
			log.Printf("webhook review of PR #%d failed: %v", number, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "queued",
		"pr_number": number,
	})
}

type analyzeRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Diff  string `json:"diff"`
}

type analyzeResponse struct {
	Status   string              `json:"status"`
	Result   *model.ReviewResult `json:"result"`
	Markdown string              `json:"markdown"`
}

// analyze reviews a raw diff without touching the hosting platform. Changed
// files are reconstructed from the diff itself.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Diff == "" {
		http.Error(w, "diff is required", http.StatusBadRequest)
		return
	}

	files, err := diffmap.SplitRawDiff(req.Diff)
	if err != nil {
		http.Error(w, "unparseable diff", http.StatusUnprocessableEntity)
		return
	}

	pr := model.PullRequest{Title: req.Title, Body: req.Body}
	result := s.analyzer.Analyze(r.Context(), pr, files, req.Diff)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Status:   "success",
		Result:   result,
		Markdown: report.Markdown(result),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("writing response failed: %v", err)
	}
}
