// Package client talks to the website API on behalf of the link-creation form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/pkg/response"
)

const defaultTimeout = 10 * time.Second

// ErrUnavailable wraps failures that are worth retrying: transport errors,
// timeouts and 5xx answers.
var ErrUnavailable = errors.New("link service unavailable")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API served at baseURL, e.g. "https://nexxel.dev".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type envelope[T any] struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Errors  []response.ValidationError `json:"errors"`
	Data    T                          `json:"data"`
}

type checkSlugData struct {
	Slug string `json:"slug"`
	Used bool   `json:"used"`
}

// CheckSlug reports whether slug is already assigned.
func (c *Client) CheckSlug(ctx context.Context, slug string) (bool, error) {
	const op = "client.Client.CheckSlug"

	var resp envelope[checkSlugData]
	if err := c.do(ctx, http.MethodGet, "/api/v1/slugs/"+url.PathEscape(slug), nil, http.StatusOK, &resp); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Data.Used, nil
}

type createLinkRequest struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

type linkData struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Create assigns slug to target. It fails with models.ErrSlugTaken when another
// link won the slug, even if an earlier CheckSlug reported it free.
func (c *Client) Create(ctx context.Context, slug, target string) (*models.Link, error) {
	const op = "client.Client.Create"

	body, err := json.Marshal(createLinkRequest{Slug: slug, URL: target})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	var resp envelope[linkData]
	if err := c.do(ctx, http.MethodPost, "/api/v1/links", body, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Link{
		ID:        resp.Data.ID,
		Slug:      resp.Data.Slug,
		URL:       resp.Data.URL,
		ShortURL:  resp.Data.ShortURL,
		CreatedAt: resp.Data.CreatedAt,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == want {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return statusError(res)
}

// statusError maps an unexpected answer onto the error taxonomy of the form.
func statusError(res *http.Response) error {
	var resp envelope[json.RawMessage]
	_ = json.NewDecoder(res.Body).Decode(&resp)

	switch {
	case res.StatusCode == http.StatusConflict:
		return models.ErrSlugTaken
	case res.StatusCode == http.StatusBadRequest:
		return &ValidationError{Message: resp.Message, Fields: resp.Errors}
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, resp.Message)
	}
}

// ValidationError is returned when the API rejects the slug or url.
// It matches models.ErrInvalidLink with errors.Is.
type ValidationError struct {
	Message string
	Fields  []response.ValidationError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", models.ErrInvalidLink, e.Message)
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", models.ErrInvalidLink, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == models.ErrInvalidLink
}

// Field returns the message for the named field, if the API reported one.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}
