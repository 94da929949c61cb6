// Package client talks to the coursework REST API on behalf of list views.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/pkg/listing"
	"github.com/noah-isme/coursework-api/pkg/middleware/requestid"
)

const (
	maxBody    = 32 << 20
	maxSnippet = 256
)

// APIError is a failure reported by the server. Message is shown to users verbatim.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the list endpoints. It never retries on its own.
type Client struct {
	baseURL string
	http    *http.Client
	token   func(ctx context.Context) (string, error)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a static bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = func(context.Context) (string, error) { return token, nil }
	}
}

// WithTokenSource resolves the bearer token per request.
func WithTokenSource(src func(ctx context.Context) (string, error)) Option {
	return func(c *Client) { c.token = src }
}

// New builds a Client for baseURL, e.g. https://api.example.com/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAssignments fetches one page of assignments for q.
func (c *Client) ListAssignments(ctx context.Context, q listing.Query) (listing.Result[models.Assignment], error) {
	var data dto.AssignmentListData
	if err := c.get(ctx, "/assignments", listing.EncodeAssignmentQuery(q), &data); err != nil {
		return listing.Result[models.Assignment]{}, err
	}
	return listing.Result[models.Assignment]{
		Items:      data.Assignments,
		TotalCount: data.TotalCount,
		Page:       data.Page,
		PageSize:   data.PageSize,
		TotalPages: data.TotalPages,
	}, nil
}

// ListSubmissions fetches one page of submissions for q.
func (c *Client) ListSubmissions(ctx context.Context, q listing.Query, opts listing.SubmissionOptions) (listing.Result[models.Submission], error) {
	var data dto.SubmissionListData
	if err := c.get(ctx, "/submissions", listing.EncodeSubmissionQuery(q, opts), &data); err != nil {
		return listing.Result[models.Submission]{}, err
	}
	return listing.Result[models.Submission]{
		Items:      data.Submissions,
		TotalCount: data.TotalCount,
		Page:       data.Page,
		PageSize:   data.PageSize,
		TotalPages: data.TotalPages,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	target := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestid.HeaderKey, reqID)
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("resolve token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      "BAD_RESPONSE",
			Message:   fmt.Sprintf("unexpected response from server (HTTP %d)%s", resp.StatusCode, trimSnippet(body)),
			RequestID: reqID,
		}
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg, RequestID: reqID}
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode %s payload: %w", path, err)
	}
	return nil
}

func trimSnippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		s = s[:maxSnippet]
	}
	if s == "" {
		return ""
	}
	return ": " + s
}
