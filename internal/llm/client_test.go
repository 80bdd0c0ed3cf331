package llm

import (
	"strings"
	"testing"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

const goodResponse = `{
  "summary": "Solid change with one security concern.",
  "positives": ["Good test coverage"],
  "findings": [
    {
      "file": "app/db.py",
      "line": 12,
      "priority": "HIGH",
      "category": "security",
      "title": "SQL Injection",
      "message": "Query built from user input.",
      "suggestion": "Use parameterized queries."
    },
    {
      "file": "app/util.py",
      "line": 3,
      "priority": "banana",
      "category": "mystery",
      "title": "Odd finding",
      "message": "Unknown labels should fall back."
    }
  ]
}`

func TestParseResponse(t *testing.T) {
	res := ParseResponse(goodResponse)

	if res.Summary != "Solid change with one security concern." {
		t.Errorf("unexpected summary: %q", res.Summary)
	}
	if len(res.Positives) != 1 || res.Positives[0] != "Good test coverage" {
		t.Errorf("unexpected positives: %v", res.Positives)
	}
	if len(res.Feedbacks) != 2 {
		t.Fatalf("expected 2 feedbacks, got %d", len(res.Feedbacks))
	}

	first := res.Feedbacks[0]
	if first.Severity != model.SeverityHigh || first.Category != model.CategorySecurity {
		t.Errorf("unexpected first feedback: %+v", first)
	}
	if first.Line != 12 || first.File != "app/db.py" {
		t.Errorf("unexpected location: %+v", first)
	}

	// Unrecognized labels fall back to LOW / best_practice.
	second := res.Feedbacks[1]
	if second.Severity != model.SeverityLow {
		t.Errorf("unknown priority should map to LOW, got %s", second.Severity)
	}
	if second.Category != model.CategoryBestPractice {
		t.Errorf("unknown category should map to best_practice, got %s", second.Category)
	}
}

func TestParseResponseFencedJSON(t *testing.T) {
	content := "Here is my review:\n```json\n" + goodResponse + "\n```\nHope that helps."
	res := ParseResponse(content)

	if len(res.Feedbacks) != 2 {
		t.Fatalf("expected findings from fenced JSON, got %d", len(res.Feedbacks))
	}
}

func TestParseResponsePlainText(t *testing.T) {
	content := "The changes look reasonable overall, nothing blocking."
	res := ParseResponse(content)

	if res.Summary != content {
		t.Errorf("plain text should become the summary, got %q", res.Summary)
	}
	if len(res.Feedbacks) != 0 {
		t.Errorf("plain text should produce no feedbacks: %v", res.Feedbacks)
	}
}

func TestParseResponseSkipsEmptyFindings(t *testing.T) {
	res := ParseResponse(`{"summary": "ok", "findings": [{"file": "x.py"}]}`)
	if len(res.Feedbacks) != 0 {
		t.Errorf("finding without title or message should be dropped: %v", res.Feedbacks)
	}
}

func TestTruncateDiff(t *testing.T) {
	short := "line one\nline two"
	if got := TruncateDiff(short, 100); got != short {
		t.Errorf("short diff should pass through unchanged")
	}

	long := strings.Repeat("abcdefghij\n", 50)
	got := TruncateDiff(long, 100)
	if len(got) > 100+40 {
		t.Errorf("truncated diff too long: %d chars", len(got))
	}
	if !strings.Contains(got, "diff truncated for length") {
		t.Error("truncation marker missing")
	}
	// Cuts happen at line boundaries only.
	for _, line := range strings.Split(got, "\n") {
		if line != "" && line != "abcdefghij" && !strings.Contains(line, "truncated") {
			t.Errorf("line split mid-way: %q", line)
		}
	}
}

func TestReviewPromptDefaults(t *testing.T) {
	p := ReviewPrompt("feat: x", "   ", "diff body", 2, 10, 5)
	if !strings.Contains(p, "No description provided.") {
		t.Error("blank description should be replaced with placeholder")
	}
	if !strings.Contains(p, "### Files Changed: 2") {
		t.Error("prompt missing file count")
	}
	if !strings.Contains(p, "diff body") {
		t.Error("prompt missing diff")
	}
}
