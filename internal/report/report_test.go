package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

func sampleResult() *model.ReviewResult {
	return &model.ReviewResult{
		PRNumber:  42,
		PRTitle:   "feat(auth): add OAuth login",
		Repo:      "acme/webapp",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Metrics: model.PRMetrics{
			FilesChanged: 4,
			LinesAdded:   120,
			LinesDeleted: 30,
			TotalChanges: 150,
		},
		Feedbacks: []model.Feedback{
			{
				File:       "app/db.py",
				Line:       12,
				Severity:   model.SeverityHigh,
				Category:   model.CategorySecurity,
				Title:      "SQL Injection (String Format)",
				Message:    "Potential SQL injection vulnerability.",
				Suggestion: "Use parameterized queries.",
				Snippet:    `cursor.execute(f"SELECT * FROM users WHERE id = {user_id}")`,
			},
			{
				File:     "app/views.py",
				Line:     7,
				Severity: model.SeverityMedium,
				Category: model.CategoryStyle,
				Title:    "Bare except",
				Message:  "Bare except clause catches all exceptions.",
			},
			{
				File:     "app/util.py",
				Line:     3,
				Severity: model.SeverityNit,
				Category: model.CategoryStyle,
				Title:    "Print statement",
				Message:  "Print statement found.",
			},
		},
		Summary:   "Adds OAuth login with a session store.",
		Positives: []string{"Clear separation between auth and session code."},
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleResult())

	for _, want := range []string{
		"## 🤖 AI Code Review",
		"| Files Changed | 4 |",
		"| Lines Added | +120 |",
		"| Lines Deleted | -30 |",
		"| PR Size | 🟡 M |",
		"| Status | 🔴 Changes Requested |",
		"**Issues Found:** 🔴 1 HIGH | 🟡 1 MEDIUM | 🟢 0 LOW | 💭 1 NIT",
		"### 🔴 HIGH Priority (Blocking)",
		"| `app/db.py` | 12 | SQL Injection (String Format) |",
		"<summary>SQL Injection (String Format)</summary>",
		"💡 **Suggestion:**",
		"### 🟡 MEDIUM Priority",
		"### 💭 Nitpicks",
		"- `app/util.py` (line 3): Print statement found.",
		"### ✅ What's Good",
		"- Clear separation between auth and session code.",
		"*Powered by AI Reviewer* 🤖",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	if strings.Contains(md, "### 🟢 LOW Priority") {
		t.Error("LOW section rendered with no LOW feedback")
	}
}

func TestMarkdownCleanReview(t *testing.T) {
	r := &model.ReviewResult{
		PRNumber: 7,
		Metrics:  model.PRMetrics{FilesChanged: 1, TotalChanges: 10},
	}
	md := Markdown(r)

	if !strings.Contains(md, "| Status | ✅ Approved |") {
		t.Error("clean review should render approved status")
	}
	if strings.Contains(md, "**Issues Found:**") {
		t.Error("counts line rendered with no feedback")
	}
	if strings.Contains(md, "### 🔴") {
		t.Error("severity section rendered with no feedback")
	}
}

func TestSeverityAndCategoryLabels(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{SeverityLabel(model.SeverityHigh), "🔴 HIGH"},
		{SeverityLabel(model.SeverityNit), "💭 NIT"},
		{CategoryLabel(model.CategorySecurity), "🔒 Security"},
		{CategoryLabel(model.CategoryStructure), "📋 Pr Structure"},
		{CategoryLabel(model.CategoryBestPractice), "✨ Best Practice"},
		{SizeEmoji("XS"), "🟢"},
		{SizeEmoji("XL"), "🔴"},
		{StatusLabel(model.StatusLookingGood), "🟢 Looking Good"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTableRowTruncation(t *testing.T) {
	fb := model.Feedback{
		Message: strings.Repeat("long message ", 10),
	}
	row := tableRow(fb)
	if !strings.Contains(row, "...") {
		t.Errorf("untitled long message should be truncated: %q", row)
	}
	if !strings.HasPrefix(row, "| - | - |") {
		t.Errorf("file-less row should use dashes: %q", row)
	}
}

func TestTableRowTruncationMultibyte(t *testing.T) {
	// 3 bytes per rune, so the 60-byte cut lands inside a rune.
	fb := model.Feedback{Message: strings.Repeat("必", 30)}
	row := tableRow(fb)
	if !utf8.ValidString(row) {
		t.Errorf("truncated row is not valid UTF-8: %q", row)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := strings.Repeat("必", 5) // 15 bytes
	got := truncate(s, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncate split a rune: %q", got)
	}
	if got != strings.Repeat("必", 3) {
		t.Errorf("expected 3 runes, got %q", got)
	}
	if truncate("short", 10) != "short" {
		t.Error("string within the limit should be unchanged")
	}
}

func TestFeedbackDetailLineRange(t *testing.T) {
	fb := model.Feedback{
		File:     "src/api.py",
		Line:     10,
		EndLine:  14,
		Severity: model.SeverityMedium,
		Category: model.CategoryPerformance,
		Message:  "Query inside loop.",
	}
	detail := feedbackDetail(fb)
	if !strings.Contains(detail, "(line 10-14)") {
		t.Errorf("detail missing line range: %q", detail)
	}
}

func TestTerminalRender(t *testing.T) {
	out := Terminal(sampleResult())

	for _, want := range []string{
		"AI Code Review - PR #42",
		"acme/webapp",
		"4 files, +120/-30 lines (M)",
		"HIGH (1)",
		"app/db.py:12",
		"Bare except",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}
