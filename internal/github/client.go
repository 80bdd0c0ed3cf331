// Package github wraps the hosting platform API used by the reviewer.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v71/github"

	"github.com/DifanaDAP/ai-reviewer/internal/model"
)

// Client talks to the GitHub API for one repository.
type Client struct {
	api   *gh.Client
	owner string
	repo  string
}

func NewClient(token, owner, repo string) *Client {
	return &Client{
		api:   gh.NewClient(nil).WithAuthToken(token),
		owner: owner,
		repo:  repo,
	}
}

// GetPullRequest fetches PR metadata.
func (c *Client) GetPullRequest(ctx context.Context, number int) (model.PullRequest, error) {
	pr, _, err := c.api.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return model.PullRequest{}, fmt.Errorf("get pull request #%d: %w", number, err)
	}

	out := model.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		State:  pr.GetState(),
	}
	if base := pr.GetBase(); base != nil {
		out.BaseSHA = base.GetSHA()
		out.BaseRef = base.GetRef()
	}
	if head := pr.GetHead(); head != nil {
		out.HeadSHA = head.GetSHA()
		out.HeadRef = head.GetRef()
	}
	return out, nil
}

// ListFiles fetches every changed file, following pagination.
func (c *Client) ListFiles(ctx context.Context, number int) ([]model.ChangedFile, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var out []model.ChangedFile

	for {
		files, resp, err := c.api.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files for #%d: %w", number, err)
		}
		for _, f := range files {
			out = append(out, model.ChangedFile{
				Filename:         f.GetFilename(),
				Status:           f.GetStatus(),
				Additions:        f.GetAdditions(),
				Deletions:        f.GetDeletions(),
				Patch:            f.GetPatch(),
				PreviousFilename: f.GetPreviousFilename(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// GetDiff fetches the PR's unified diff.
func (c *Client) GetDiff(ctx context.Context, number int) (string, error) {
	diff, _, err := c.api.PullRequests.GetRaw(ctx, c.owner, c.repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("get diff for #%d: %w", number, err)
	}
	return diff, nil
}

// PostReview posts the review body. Blocking findings request changes;
// everything else arrives as a non-blocking comment.
func (c *Client) PostReview(ctx context.Context, number int, body string, blocking bool) error {
	event := "COMMENT"
	if blocking {
		event = "REQUEST_CHANGES"
	}

	review := &gh.PullRequestReviewRequest{
		Body:  gh.Ptr(body),
		Event: gh.Ptr(event),
	}
	if _, _, err := c.api.PullRequests.CreateReview(ctx, c.owner, c.repo, number, review); err != nil {
		return fmt.Errorf("post review on #%d: %w", number, err)
	}
	return nil
}

// PostComment posts a plain issue comment on the PR.
func (c *Client) PostComment(ctx context.Context, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	if _, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, number, comment); err != nil {
		return fmt.Errorf("post comment on #%d: %w", number, err)
	}
	return nil
}
