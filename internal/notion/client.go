// Package notion provides a thin client for the Notion REST API.
// It covers the two operations the pipeline needs: paging through a
// database's pages and fetching a page's block children.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the Notion API origin.
const DefaultBaseURL = "https://api.notion.com"

// apiVersion is sent in the Notion-Version header on every request.
const apiVersion = "2022-06-28"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxPageSize is the largest page size the Notion API accepts.
const maxPageSize = 100

// APIError represents an error response from the Notion API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a Notion not-found response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || apiErr.Code == "object_not_found"
}

// IsRateLimited reports whether err is a Notion rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Code == "rate_limited"
}

// Client calls the Notion REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API origin. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Notion API client. The integration token is required.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("notion integration token is required")
	}

	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// QueryResult is one page of a database query.
type QueryResult struct {
	Pages      []Page
	NextCursor string
	HasMore    bool
}

// QueryDatabase lists pages of a database, returning one result page and a
// continuation cursor. Pass an empty cursor for the first call.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, pageSize int, startCursor string) (*QueryResult, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	body := map[string]any{"page_size": pageSize}
	if startCursor != "" {
		body["start_cursor"] = startCursor
	}

	var resp struct {
		Results    []Page  `json:"results"`
		NextCursor *string `json:"next_cursor"`
		HasMore    bool    `json:"has_more"`
	}
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	result := &QueryResult{Pages: resp.Results, HasMore: resp.HasMore}
	if resp.NextCursor != nil {
		result.NextCursor = *resp.NextCursor
	}
	return result, nil
}

// BlockChildren fetches the ordered block children of a page or block,
// following pagination until the API reports completion.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""

	for {
		path := fmt.Sprintf("/v1/blocks/%s/children?page_size=%d", blockID, maxPageSize)
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}

		var resp struct {
			Results    []Block `json:"results"`
			NextCursor *string `json:"next_cursor"`
			HasMore    bool    `json:"has_more"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}

		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil {
			return blocks, nil
		}
		cursor = *resp.NextCursor
	}
}

// do executes one API request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// The error body is advisory; the status code alone is enough.
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
