// Package githost talks to the GitHub REST API for the pull-request
// lifecycle: open a PR from the bot branch and squash-merge it.
package githost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evanmh/activitybot/internal/domain"
)

const requestTimeout = 30 * time.Second

// Client is an authenticated GitHub API client scoped to one repository
type Client struct {
	// BaseURL is overridable for tests; defaults to the public API
	BaseURL string

	owner string
	repo  string
	token string
	http  *http.Client
}

// New creates a Client for owner/repo authenticated with the given token
func New(owner, repo, token string) *Client {
	return &Client{
		BaseURL: "https://api.github.com",
		owner:   owner,
		repo:    repo,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type createPRRequest struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body"`
}

type prResponse struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

type mergeRequest struct {
	MergeMethod string `json:"merge_method"`
	CommitTitle string `json:"commit_title"`
}

// CreatePullRequest opens a pull request from head against base
func (c *Client) CreatePullRequest(ctx context.Context, title, head, base, body string) (*domain.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls", c.BaseURL, c.owner, c.repo)
	payload := createPRRequest{Title: title, Head: head, Base: base, Body: body}

	var resp prResponse
	if err := c.do(ctx, "create pull request", http.MethodPost, url, payload, http.StatusCreated, &resp); err != nil {
		return nil, err
	}

	return &domain.PullRequest{
		Number: resp.Number,
		URL:    resp.HTMLURL,
		Head:   head,
		Base:   base,
	}, nil
}

// MergePullRequest squash-merges a pull request with the given commit title
func (c *Client) MergePullRequest(ctx context.Context, number int, title string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/merge", c.BaseURL, c.owner, c.repo, number)
	payload := mergeRequest{MergeMethod: "squash", CommitTitle: title}
	return c.do(ctx, "merge pull request", http.MethodPut, url, payload, http.StatusOK, nil)
}

func (c *Client) do(ctx context.Context, op, method, url string, payload any, wantStatus int, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.HostError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return &domain.HostError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.HostError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != wantStatus {
		return &domain.HostError{Op: op, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &domain.HostError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
		}
	}
	return nil
}
