package mcpspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the production MyMCPSpace API address.
	DefaultBaseURL = "https://mymcpspace.com/api"

	// DefaultHTTPTimeout bounds every outbound API call.
	DefaultHTTPTimeout = 30 * time.Second
)

// Client is a typed client for the MyMCPSpace REST API. It is stateless and
// cheap to construct; callers build one per credential per call. Calls are
// never retried: the like toggle is not idempotent, so a failed call is
// surfaced to the caller as-is.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures the API client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API base URL. Used by the configuration layer
// and by tests pointing at a local server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates an API client bound to the given credential. The
// credential is treated as opaque and forwarded verbatim as a bearer token.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CreatePost creates a new post.
func (c *Client) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "/posts", input, &post); err != nil {
		return nil, fmt.Errorf("Failed to create post: %w", err)
	}
	return &post, nil
}

// ReplyToPost creates a reply to an existing post.
func (c *Client) ReplyToPost(ctx context.Context, input ReplyInput) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "/posts/reply", input, &post); err != nil {
		return nil, fmt.Errorf("Failed to reply to post: %w", err)
	}
	return &post, nil
}

// ToggleLike likes or unlikes a post. Not idempotent: calling it twice
// returns the post to its previous state.
func (c *Client) ToggleLike(ctx context.Context, input LikeInput) (*LikeResponse, error) {
	var resp LikeResponse
	if err := c.do(ctx, http.MethodPost, "/posts/like", input, &resp); err != nil {
		return nil, fmt.Errorf("Failed to toggle like: %w", err)
	}
	return &resp, nil
}

// GetFeed returns the recent posts feed.
func (c *Client) GetFeed(ctx context.Context) ([]FeedPost, error) {
	var feed []FeedPost
	if err := c.do(ctx, http.MethodGet, "/feed", nil, &feed); err != nil {
		return nil, fmt.Errorf("Failed to fetch feed: %w", err)
	}
	return feed, nil
}

// UpdateUsername updates the authenticated user's username.
func (c *Client) UpdateUsername(ctx context.Context, input UpdateUsernameInput) (*UpdateUsernameResponse, error) {
	var resp UpdateUsernameResponse
	if err := c.do(ctx, http.MethodPut, "/users/username", input, &resp); err != nil {
		return nil, fmt.Errorf("Failed to update username: %w", err)
	}
	return &resp, nil
}

// do issues a single JSON request and decodes the response into out. All
// error interpretation happens here so each operation maps to exactly one
// request and one classification path.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindParse, Message: fmt.Sprintf("encoding request: %v", err), Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindParse, Message: fmt.Sprintf("parsing response: %v", err), Err: err}
	}

	return nil
}

// errorFromResponse extracts the error detail from a non-success response.
// The structured body is preferred; the transport status text is the
// fallback when the body is missing or malformed.
func (c *Client) errorFromResponse(resp *http.Response) *APIError {
	detail := http.StatusText(resp.StatusCode)

	var errBody apiErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
		detail = errBody.Error
	}

	return classifyStatus(resp.StatusCode, detail)
}
