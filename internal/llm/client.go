// Package llm runs the AI-powered review pass against an OpenAI-compatible
// chat completion API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

const maxDiffChars = 15000

// Result is the outcome of one LLM analysis pass.
type Result struct {
	Feedbacks []model.Feedback
	Summary   string
	Positives []string
}

// Request carries the PR context handed to the model.
type Request struct {
	Title        string
	Description  string
	Diff         string
	FileCount    int
	LinesAdded   int
	LinesDeleted int
}

// Client calls the chat completion API and parses the structured response.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int
}

func NewClient(apiKey, model string, maxTokens int) *Client {
	return &Client{
		api:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Analyze asks the model to review the diff. A transport or API failure is
// returned as an error; a malformed response degrades to a summary-only
// result instead.
func (c *Client) Analyze(ctx context.Context, req Request) (Result, error) {
	diff := TruncateDiff(req.Diff, maxDiffChars)
	prompt := ReviewPrompt(req.Title, req.Description, diff, req.FileCount, req.LinesAdded, req.LinesDeleted)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("chat completion: empty response")
	}

	return ParseResponse(resp.Choices[0].Message.Content), nil
}

// TruncateDiff cuts a diff at a line boundary so the prompt stays within the
// context budget. A truncation marker is appended when anything is dropped.
func TruncateDiff(diff string, maxLength int) string {
	if len(diff) <= maxLength {
		return diff
	}

	var b strings.Builder
	length := 0
	for _, line := range strings.Split(diff, "\n") {
		if length+len(line)+1 > maxLength {
			b.WriteString("\n... (diff truncated for length) ...")
			break
		}
		if length > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		length += len(line) + 1
	}
	return b.String()
}

type rawFinding struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Priority   string `json:"priority"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

type rawResponse struct {
	Summary   string       `json:"summary"`
	Positives []string     `json:"positives"`
	Findings  []rawFinding `json:"findings"`
}

var fencedJSONRE = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// ParseResponse turns the model output into structured feedback. JSON may
// arrive bare or wrapped in a markdown fence; anything unparseable becomes
// the summary so the review still carries the model's text.
func ParseResponse(content string) Result {
	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		if m := fencedJSONRE.FindStringSubmatch(content); m != nil {
			return ParseResponse(m[1])
		}
		return Result{Summary: content}
	}

	res := Result{Summary: raw.Summary, Positives: raw.Positives}
	for _, f := range raw.Findings {
		if f.Message == "" && f.Title == "" {
			log.Printf("warning: skipping empty LLM finding in %q", f.File)
			continue
		}
		res.Feedbacks = append(res.Feedbacks, model.Feedback{
			File:       f.File,
			Line:       f.Line,
			Severity:   model.ParseSeverity(f.Priority, model.SeverityLow),
			Category:   model.ParseCategory(f.Category),
			Title:      f.Title,
			Message:    f.Message,
			Suggestion: f.Suggestion,
		})
	}
	return res
}
