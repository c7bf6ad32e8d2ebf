// Package modrinth is a small client for the Modrinth v2 REST API.
package modrinth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxSearchLimit = 100
)

// ErrNotFound is returned when the registry answers 404.
var ErrNotFound = errors.New("project not found")

// StatusError reports an unexpected HTTP status from the registry.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Project is the subset of GET /project/{id} the tool reads.
type Project struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// SearchHit is one entry of GET /search.
type SearchHit struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

// SearchResult captures the response from GET /search.
type SearchResult struct {
	Hits      []SearchHit `json:"hits"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	TotalHits int         `json:"total_hits"`
}

// Client handles Modrinth API calls.
type Client struct {
	host       string
	userAgent  string
	httpClient *http.Client
}

// New creates a new Modrinth API client. A zero timeout selects the default.
func New(host, userAgent string, timeout time.Duration) (*Client, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("modrinth host must be provided")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid modrinth host: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		host:      strings.TrimSuffix(u.String(), "/"),
		userAgent: strings.TrimSpace(userAgent),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) applyCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// GetProject fetches a project by id or slug.
func (c *Client) GetProject(ctx context.Context, idOrSlug string) (*Project, error) {
	endpoint := c.host + "/project/" + url.PathEscape(idOrSlug)
	var project Project
	if err := c.getJSON(ctx, "get project", endpoint, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Search runs a full-text project search.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	qs := url.Values{}
	qs.Set("limit", strconv.Itoa(limit))
	qs.Set("query", query)

	endpoint := c.host + "/search?" + qs.Encode()
	var result SearchResult
	if err := c.getJSON(ctx, "search", endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.applyCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
