// Package restapi implements service.Remote against the list/task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskcard/internal/service"
)

const (
	// DefaultBaseURL is the address of a locally running API.
	DefaultBaseURL = "http://localhost:1009"

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// RequestIDHeader carries a fresh UUID on every request.
	RequestIDHeader = "X-Request-Id"
)

// Client implements service.Remote over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the API at baseURL. Every request carries the
// bearer credential from src; an empty credential is sent as is.
func New(baseURL string, src oauth2.TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: &oauth2.Transport{Source: src}},
		timeout: APITimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// flexBool decodes JSON booleans and the 0/1 integers of tinyint columns.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*b = true
	case "false", "0", "null", "":
		*b = false
	default:
		return fmt.Errorf("invalid boolean: %s", data)
	}
	return nil
}

type listDTO struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	IsVisible flexBool `json:"is_visible"`
}

type subTaskDTO struct {
	ID      int64    `json:"id"`
	Content string   `json:"content"`
	Done    flexBool `json:"done"`
}

type createListRequest struct {
	Title string `json:"title"`
}

type updateListRequest struct {
	Title     string `json:"title"`
	IsVisible bool   `json:"isVisible"`
}

type insertResponse struct {
	InsertID int64 `json:"insertId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListLists implements service.Remote.
func (c *Client) ListLists(ctx context.Context) ([]service.RemoteList, error) {
	var dtos []listDTO
	if err := c.do(ctx, http.MethodGet, "/lists", nil, &dtos); err != nil {
		return nil, err
	}

	lists := make([]service.RemoteList, 0, len(dtos))
	for _, d := range dtos {
		lists = append(lists, service.RemoteList{
			ID:        d.ID,
			Title:     d.Title,
			IsVisible: bool(d.IsVisible),
		})
	}
	return lists, nil
}

// ListSubTasks implements service.Remote.
func (c *Client) ListSubTasks(ctx context.Context, listID int64) ([]service.RemoteSubTask, error) {
	var dtos []subTaskDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", listID), nil, &dtos); err != nil {
		return nil, err
	}

	subs := make([]service.RemoteSubTask, 0, len(dtos))
	for _, d := range dtos {
		subs = append(subs, service.RemoteSubTask{
			ID:      d.ID,
			Content: d.Content,
			Done:    bool(d.Done),
		})
	}
	return subs, nil
}

// CreateList implements service.Remote. Only the title is sent.
func (c *Client) CreateList(ctx context.Context, title string) (int64, error) {
	var resp insertResponse
	if err := c.do(ctx, http.MethodPost, "/lists", createListRequest{Title: title}, &resp); err != nil {
		return 0, err
	}
	if resp.InsertID == 0 {
		return 0, fmt.Errorf("create list: response carries no insertId")
	}
	return resp.InsertID, nil
}

// UpdateList implements service.Remote.
func (c *Client) UpdateList(ctx context.Context, listID int64, title string, visible bool) (int64, error) {
	var resp insertResponse
	body := updateListRequest{Title: title, IsVisible: visible}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/lists/%d", listID), body, &resp); err != nil {
		return 0, err
	}
	return resp.InsertID, nil
}

// DeleteList implements service.Remote.
func (c *Client) DeleteList(ctx context.Context, listID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d", listID), nil, nil)
}

// do sends one request and decodes a 2xx response body into out.
// An empty body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s: request timed out", service.ErrNetwork, method, path)
		}
		return fmt.Errorf("%w: %s %s: %v", service.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", service.ErrNetwork, method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrAuth
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, service.ErrNotFound)
	}

	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return fmt.Errorf("%w: %s %s: HTTP %d: %s", service.ErrNetwork, method, path, resp.StatusCode, msg)
}
