// Package github fetches repository files and commit history over the GitHub REST API.
package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
)

// Request limits.
const (
	requestTimeout   = 30 * time.Second
	maxListRetries   = 3
	maxCommitsPage   = 100
	rateLimitHeader  = "X-RateLimit-Remaining"
	rateResetHeader  = "X-RateLimit-Reset"
	githubAcceptType = "application/vnd.github+json"
)

// Client implements contract.Fetcher against the GitHub REST API.
type Client struct {
	http        *resty.Client
	extensions  []string
	excludes    []string
	maxFiles    int
	maxFileSize int64

	// newBackOff builds the retry policy for top-level requests.
	newBackOff func() backoff.BackOff
}

var _ contract.Fetcher = &Client{} // Compile-time check

// NewClient creates a GitHub fetcher bounded by the configuration.
func NewClient(cfg *contract.Config) *Client {
	rc := resty.New().
		SetBaseURL(cfg.GitHubAPI).
		SetTimeout(requestTimeout).
		SetHeader("Accept", githubAcceptType).
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetHeader("User-Agent", "debtlens")
	if cfg.GitHubToken != "" {
		rc.SetAuthToken(cfg.GitHubToken)
	}
	return &Client{
		http:        rc,
		extensions:  cfg.Extensions,
		excludes:    cfg.Excludes,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxListRetries)
		},
	}
}

type repoInfo struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

type contentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type commitItem struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
}

type commitDetail struct {
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
	Files []struct {
		Filename string `json:"filename"`
		Patch    string `json:"patch"`
	} `json:"files"`
}

// ListFiles walks the repository contents breadth first. The repository lookup and
// the root listing are retried on transient failures and fail the whole call;
// subdirectory failures are logged and skipped.
func (c *Client) ListFiles(ctx context.Context, repo contract.RepoRef) ([]contract.FileEntry, error) {
	var info repoInfo
	if err := c.getWithRetry(ctx, repoPath(repo), &info); err != nil {
		return nil, err
	}

	var root []contentEntry
	if err := c.getWithRetry(ctx, contentsPath(repo, ""), &root); err != nil {
		return nil, err
	}

	var files []contract.FileEntry
	level := root
	var queue []string
	for {
		for _, e := range level {
			if len(files) >= c.maxFiles {
				return files, nil
			}
			switch e.Type {
			case "dir":
				if !strings.HasPrefix(e.Name, ".") && !contract.ShouldIgnore(e.Path+"/", c.excludes) {
					queue = append(queue, e.Path)
				}
			case "file":
				if e.Size > c.maxFileSize || !contract.HasAllowedExtension(e.Path, c.extensions) ||
					contract.ShouldIgnore(e.Path, c.excludes) {
					continue
				}
				files = append(files, contract.FileEntry{Path: e.Path, Size: e.Size, URL: contentsPath(repo, e.Path)})
			}
		}
		if len(queue) == 0 || len(files) >= c.maxFiles {
			return files, nil
		}
		dir := queue[0]
		queue = queue[1:]
		level = nil
		if err := c.get(ctx, contentsPath(repo, dir), &level); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			contract.LogWarn("Skipping directory", err, logrus.Fields{"path": dir})
		}
	}
}

// FetchFile downloads one file through the contents API and decodes it.
func (c *Client) FetchFile(ctx context.Context, repo contract.RepoRef, entry contract.FileEntry) (string, error) {
	p := entry.URL
	if p == "" {
		p = contentsPath(repo, entry.Path)
	}
	var content contentEntry
	if err := c.get(ctx, p, &content); err != nil {
		return "", err
	}
	if content.Size > c.maxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes", contract.ErrFileTooLarge, entry.Path, content.Size)
	}
	if content.Encoding != "base64" {
		return "", fmt.Errorf("unsupported content encoding %q for %s", content.Encoding, entry.Path)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", entry.Path, err)
	}
	if int64(len(data)) > c.maxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes", contract.ErrFileTooLarge, entry.Path, len(data))
	}
	return string(data), nil
}

// ListCommits returns up to n commits of the default branch ordered newest first.
func (c *Client) ListCommits(ctx context.Context, repo contract.RepoRef, n int) ([]schema.CommitInfo, error) {
	n = max(1, min(n, maxCommitsPage))
	var items []commitItem
	p := repoPath(repo) + "/commits?per_page=" + strconv.Itoa(n)
	if err := c.getWithRetry(ctx, p, &items); err != nil {
		return nil, err
	}
	commits := make([]schema.CommitInfo, 0, len(items))
	for _, it := range items {
		commits = append(commits, schema.CommitInfo{
			Hash:      it.SHA,
			Author:    it.Commit.Author.Name,
			Message:   it.Commit.Message,
			Timestamp: it.Commit.Author.Date,
		})
	}
	return commits, nil
}

// FetchCommit returns the per-file patches of one commit.
func (c *Client) FetchCommit(ctx context.Context, repo contract.RepoRef, info schema.CommitInfo) (schema.CommitDetail, error) {
	var d commitDetail
	if err := c.get(ctx, repoPath(repo)+"/commits/"+url.PathEscape(info.Hash), &d); err != nil {
		return schema.CommitDetail{}, err
	}
	detail := schema.CommitDetail{
		CommitInfo: info,
		Additions:  d.Stats.Additions,
		Deletions:  d.Stats.Deletions,
	}
	for _, f := range d.Files {
		detail.Files = append(detail.Files, schema.FilePatch{Path: f.Filename, Patch: f.Patch})
	}
	return detail, nil
}

// getWithRetry retries transient failures with the client's backoff policy.
func (c *Client) getWithRetry(ctx context.Context, p string, out any) error {
	op := func() error {
		err := c.get(ctx, p, out)
		var re *requestError
		if errors.As(err, &re) && !re.transient {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx))
}

// requestError is a failed API call. Transient errors are worth retrying.
type requestError struct {
	status    int
	message   string
	transient bool
}

func (e *requestError) Error() string {
	if e.status == 0 {
		return e.message
	}
	return fmt.Sprintf("GitHub API returned %d: %s", e.status, e.message)
}

func (e *requestError) Unwrap() error {
	return contract.ErrUpstreamUnavailable
}

func (c *Client) get(ctx context.Context, p string, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetResult(out).Get(p)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &requestError{message: err.Error(), transient: true}
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	status := resp.StatusCode()
	if rateLimited(resp) {
		msg := "rate limit exceeded"
		if reset := resp.Header().Get(rateResetHeader); reset != "" {
			if secs, err := strconv.ParseInt(reset, 10, 64); err == nil {
				msg += ", resets at " + time.Unix(secs, 0).UTC().Format(time.RFC3339)
			}
		}
		return &requestError{status: status, message: msg + ". Set GITHUB_TOKEN to raise the limit"}
	}
	return &requestError{
		status:    status,
		message:   strings.TrimSpace(http.StatusText(status)),
		transient: status >= http.StatusInternalServerError,
	}
}

func rateLimited(resp *resty.Response) bool {
	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header().Get(rateLimitHeader) == "0"
	}
	return false
}

func repoPath(repo contract.RepoRef) string {
	return "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name)
}

func contentsPath(repo contract.RepoRef, p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return repoPath(repo) + "/contents/" + strings.Join(segments, "/")
}
