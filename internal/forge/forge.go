// Package forge is a thin client for the code-hosting REST API. It covers
// the three operations the release pipeline needs: finding the pull request
// linked to a commit, fetching a pull request's author, and creating a
// release.
package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shipnote/shipnote/internal/retry"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout bounds every API call. A stalled lookup must not block
	// the whole run; callers treat a timeout as "not found".
	DefaultTimeout = 30 * time.Second
)

// Release is the created release record as returned by the API.
type Release struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Draft   bool   `json:"draft"`
	HTMLURL string `json:"html_url"`
}

// ReleaseRequest contains the information needed to create a new release.
type ReleaseRequest struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	Draft   bool   `json:"draft"`
}

// Client talks to a single repository on the forge.
type Client struct {
	baseURL string
	owner   string
	repo    string
	token   string
	http    *http.Client
	retry   retry.Policy
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used for enterprise hosts and tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithToken sets the bearer token for authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetryPolicy overrides the backoff policy for read calls.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// NewClient creates a client for owner/repo.
func NewClient(owner, repo string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		owner:   owner,
		repo:    repo,
		http:    &http.Client{Timeout: DefaultTimeout},
		retry:   retry.DefaultPolicy(),
		log:     log.WithPrefix("forge"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// remotePatterns covers the remote URL shapes git configures in practice:
// https://host/owner/repo(.git), ssh://git@host/owner/repo(.git) and the
// SCP-style git@host:owner/repo(.git).
var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^ssh://(?:[^@]+@)?[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^[^@]+@[^:]+:([^/]+)/([^/]+?)(?:\.git)?$`),
}

// ParseRemoteURL extracts the owner and repository name from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	for _, p := range remotePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("cannot determine owner/repo from remote URL %q", url)
}

// PullRequestForCommit returns the number of the pull request linked to the
// commit, or 0 if none is found. It first lists pull requests associated with
// the commit, then falls back to treating the hash itself as a pull-request
// identifier. Both lookups are best effort; an API failure is returned so the
// caller can decide, but callers treat any failure as "no PR found".
func (c *Client) PullRequestForCommit(ctx context.Context, sha string) (int, error) {
	var pulls []struct {
		Number int `json:"number"`
	}
	err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits/%s/pulls", c.owner, c.repo, sha), &pulls)
	if err == nil && len(pulls) > 0 {
		return pulls[0].Number, nil
	}
	if err != nil {
		c.log.Debug("commit PR listing failed", "sha", sha, "err", err)
	}

	var pr struct {
		Number int `json:"number"`
	}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%s", c.owner, c.repo, sha), &pr); err != nil {
		return 0, err
	}
	return pr.Number, nil
}

// PullRequestAuthor returns the login of the pull request's author.
func (c *Client) PullRequestAuthor(ctx context.Context, number int) (string, error) {
	var pr struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", c.owner, c.repo, number), &pr); err != nil {
		return "", err
	}
	if pr.User.Login == "" {
		return "", fmt.Errorf("pull request #%d has no author login", number)
	}
	return pr.User.Login, nil
}

// CreateRelease creates a release for an already-pushed tag.
func (c *Client) CreateRelease(ctx context.Context, req ReleaseRequest) (*Release, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding release request: %w", err)
	}

	var rel Release
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/releases", c.owner, c.repo), body, &rel); err != nil {
		return nil, err
	}
	c.log.Debug("release created", "tag", rel.TagName, "draft", rel.Draft)
	return &rel, nil
}

// get performs a read call, retrying transient failures. Writes are never
// retried: a timed-out release creation may still have gone through on the
// server, and a duplicate would be worse than a reported failure.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return retry.Do(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, path, nil, out)
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return statusErr
		}
		return retry.Permanent(statusErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("decoding %s %s response: %w", method, path, err))
	}
	return nil
}
