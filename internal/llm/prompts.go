package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert code reviewer with deep knowledge of software engineering best practices, security, performance, and clean code principles.

Your task is to review code changes (diffs) and provide actionable feedback.

## Your Review Should Cover:
1. **Security Issues** - vulnerabilities, injection risks, authentication problems
2. **Performance Problems** - inefficient algorithms, N+1 queries, memory leaks
3. **Code Quality** - readability, maintainability, SOLID principles
4. **Best Practices** - language-specific idioms, design patterns
5. **Potential Bugs** - logic errors, edge cases, error handling

## Priority Levels:
- **HIGH**: Security vulnerabilities, critical bugs, data loss risks - MUST be fixed
- **MEDIUM**: Significant issues that should be addressed but aren't blocking
- **LOW**: Good to fix but minor impact
- **NIT**: Style preferences, minor improvements

## Important Guidelines:
- Focus on substantive issues, not trivial style nitpicks
- Be specific about line numbers when possible
- Provide actionable suggestions
- Praise good patterns when you see them
- Consider the context of the change

If the code looks good overall, say so! Include positive observations about well-written code.`

const reviewPromptTemplate = `## Pull Request: %s

### PR Description:
%s

### Files Changed: %d
### Lines Added: +%d
### Lines Deleted: -%d

### Diff:
` + "```diff\n%s\n```" + `

Please review these changes and provide your feedback as JSON.

Also provide a brief summary of the overall quality and any positive aspects you noticed.

Response format:
` + "```json" + `
{
  "summary": "Brief overall assessment",
  "positives": ["Good aspect 1", "Good aspect 2"],
  "findings": [
    {
      "file": "...",
      "line": 0,
      "priority": "HIGH|MEDIUM|LOW|NIT",
      "category": "security|performance|style|architecture|testing|documentation|best_practice",
      "title": "...",
      "message": "...",
      "suggestion": "..."
    }
  ]
}
` + "```"

// ReviewPrompt builds the user prompt for a review request.
func ReviewPrompt(title, description, diff string, fileCount, linesAdded, linesDeleted int) string {
	if strings.TrimSpace(description) == "" {
		description = "No description provided."
	}
	return fmt.Sprintf(reviewPromptTemplate, title, description, fileCount, linesAdded, linesDeleted, diff)
}
