// Package github implements the PokedexSource port by reading a dataset
// document from a GitHub repository with the go-github library.
package github

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/pokedex/internal/adapter/driven/pokedexjson"
	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PokedexSource = (*Source)(nil)

// Location identifies a dataset document inside a repository.
type Location struct {
	Repo string // owner/name
	Path string
	Ref  string // branch, tag or SHA; empty means the default branch
}

// Source loads the dataset from the GitHub contents API.
type Source struct {
	gh    *gh.Client
	owner string
	repo  string
	path  string
	ref   string
}

// NewSource creates a Source with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when token is set)
func NewSource(loc Location, token string) (*Source, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return newSource(client, loc)
}

// NewSourceWithHTTPClient creates a Source with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewSourceWithHTTPClient(httpClient *http.Client, baseURL string, loc Location) (*Source, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return newSource(client, loc)
}

func newSource(client *gh.Client, loc Location) (*Source, error) {
	owner, repo, err := splitRepo(loc.Repo)
	if err != nil {
		return nil, err
	}
	if loc.Path == "" {
		return nil, fmt.Errorf("dataset path is required for repo %s", loc.Repo)
	}

	return &Source{
		gh:    client,
		owner: owner,
		repo:  repo,
		path:  loc.Path,
		ref:   loc.Ref,
	}, nil
}

// Load fetches and decodes the dataset document. Files too large for inline
// content are fetched through their download URL.
func (s *Source) Load(ctx context.Context) ([]model.Pokemon, error) {
	var opts *gh.RepositoryContentGetOptions
	if s.ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: s.ref}
	}

	file, _, resp, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		return nil, fmt.Errorf("get contents %s/%s/%s: %w", s.owner, s.repo, s.path, err)
	}
	logRateLimit(resp, s.path)

	if file == nil {
		return nil, fmt.Errorf("get contents %s/%s/%s: path is a directory", s.owner, s.repo, s.path)
	}

	data, err := s.fileBytes(ctx, file)
	if err != nil {
		return nil, err
	}

	pokemon, err := pokedexjson.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load dataset %s/%s/%s: %w", s.owner, s.repo, s.path, err)
	}

	slog.Info("dataset fetched from github",
		"repo", s.owner+"/"+s.repo,
		"path", s.path,
		"sha", file.GetSHA(),
		"count", len(pokemon),
	)

	return pokemon, nil
}

func (s *Source) fileBytes(ctx context.Context, file *gh.RepositoryContent) ([]byte, error) {
	if file.GetEncoding() != "none" {
		content, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("decode contents of %s: %w", s.path, err)
		}
		return []byte(content), nil
	}

	downloadURL := file.GetDownloadURL()
	if downloadURL == "" {
		return nil, fmt.Errorf("contents of %s are not inline and have no download URL", s.path)
	}

	req, err := s.gh.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request for %s: %w", s.path, err)
	}

	var buf bytes.Buffer
	if _, err := s.gh.Do(ctx, req, &buf); err != nil {
		return nil, fmt.Errorf("download %s: %w", s.path, err)
	}

	return buf.Bytes(), nil
}

func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
