// Package client is a Go client for the prompt API together with the
// optimistic state holders a UI keeps in sync with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prompteria-api/models"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the prompt API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sends the session token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ToggleLike(ctx context.Context, promptID string) (*models.LikeResponse, error) {
	var resp models.LikeResponse
	if err := c.do(ctx, http.MethodPost, "/prompt/"+url.PathEscape(promptID)+"/like", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RecordView(ctx context.Context, promptID string) (int, error) {
	var resp models.ViewResponse
	if err := c.do(ctx, http.MethodPost, "/prompt/"+url.PathEscape(promptID)+"/view", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Views, nil
}

func (c *Client) GetPrompt(ctx context.Context, promptID string) (*models.PromptResponse, error) {
	var resp models.PromptResponse
	if err := c.do(ctx, http.MethodGet, "/prompt/"+url.PathEscape(promptID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreatePrompt(ctx context.Context, req models.PromptRequest) (*models.PromptResponse, error) {
	var resp models.PromptResponse
	if err := c.do(ctx, http.MethodPost, "/prompt/new", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeletePrompt(ctx context.Context, promptID string) error {
	return c.do(ctx, http.MethodDelete, "/prompt/"+url.PathEscape(promptID), nil, nil)
}

// UserLikes returns a PageFunc over the prompts a user liked.
func (c *Client) UserLikes(userID string) PageFunc {
	return c.pages("/users/" + url.PathEscape(userID) + "/likes")
}

// UserPosts returns a PageFunc over the prompts a user created.
func (c *Client) UserPosts(userID string) PageFunc {
	return c.pages("/users/" + url.PathEscape(userID) + "/posts")
}

// Feed returns a PageFunc over all prompts, optionally narrowed by tag and
// a free-text search.
func (c *Client) Feed(tag, search string) PageFunc {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if search != "" {
		q.Set("search", search)
	}
	return c.pagesWithQuery("/prompt", q)
}

func (c *Client) pages(path string) PageFunc {
	return c.pagesWithQuery(path, url.Values{})
}

func (c *Client) pagesWithQuery(path string, base url.Values) PageFunc {
	return func(ctx context.Context, page, limit int) (*models.PromptPage, error) {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))

		var resp models.PromptPage
		if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
		apiErr.Details = payload.Details
	}
	return apiErr
}
