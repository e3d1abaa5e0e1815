// Package commits fetches the commits that ground-truth rows point at from
// the GitHub REST API.
package commits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// ErrUnknownProject is returned for a project with no configured repository.
var ErrUnknownProject = errors.New("unknown project")

// Config holds GitHub connection settings.
type Config struct {
	BaseURL           string            // e.g. https://api.github.com
	Token             string            // optional; unauthenticated requests are heavily rate limited
	RequestsPerSecond float64           // <= 0 means unlimited
	Projects          map[string]string // project name -> owner/repo
}

// File is one changed file of a commit.
type File struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"` // empty for binary or very large files
}

// Commit is a fetched commit.
type Commit struct {
	Project string `json:"-"`
	Sha     string `json:"sha"`
	Files   []File `json:"files"`
}

// Repo identifies a GitHub repository.
type Repo struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

// Client talks to the GitHub REST API.
type Client struct {
	HTTPClient *http.Client
	Config     Config

	repos   *RepoCache
	limiter *rate.Limiter
}

// NewClient returns a client. repos may be shared between clients; nil
// gives the client a private cache.
func NewClient(cfg Config, repos *RepoCache) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if repos == nil {
		repos = NewRepoCache()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		HTTPClient: http.DefaultClient,
		Config:     cfg,
		repos:      repos,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Repo resolves a project name to its repository. Lookups are cached and
// concurrent lookups of the same repository share one request.
func (c *Client) Repo(ctx context.Context, project string) (*Repo, error) {
	full, ok := c.Config.Projects[project]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProject, project)
	}
	return c.repos.Get(ctx, full, c.fetchRepo)
}

// Commit fetches one commit of a project with its changed files.
func (c *Client) Commit(ctx context.Context, project, sha string) (*Commit, error) {
	repo, err := c.Repo(ctx, project)
	if err != nil {
		return nil, err
	}
	var commit Commit
	// TODO: follow the Link header; GitHub returns at most 300 files per page.
	path := "/repos/" + repo.FullName + "/commits/" + url.PathEscape(sha)
	if err := c.getJSON(ctx, path, &commit); err != nil {
		return nil, fmt.Errorf("fetch commit %s: %w", sha, err)
	}
	commit.Project = project
	logging.New("commits").Debug("commit fetched", "project", project, "sha", sha, "files", len(commit.Files))
	return &commit, nil
}

func (c *Client) fetchRepo(ctx context.Context, full string) (*Repo, error) {
	var repo Repo
	if err := c.getJSON(ctx, "/repos/"+full, &repo); err != nil {
		return nil, fmt.Errorf("fetch repository %s: %w", full, err)
	}
	if repo.FullName == "" {
		repo.FullName = full
	}
	return &repo, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
