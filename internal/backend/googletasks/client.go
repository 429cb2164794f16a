// Package googletasks implements service.Remote on top of the Google Tasks API.
// A Google task list is a task; the tasks inside it are its sub-tasks.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskcard/internal/service"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = tasks.TasksScope

	statusCompleted = "completed"
)

// Client implements service.Remote using the Google Tasks API.
type Client struct {
	svc     *tasks.Service
	ids     *IDMap
	timeout time.Duration
}

// LoadOAuthConfig reads the desktop OAuth client credentials at path.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	conf, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return conf, nil
}

// New creates a client that authorizes with src.
func New(ctx context.Context, src oauth2.TokenSource, ids *IDMap, timeout time.Duration) (*Client, error) {
	return NewWithHTTPClient(ctx, oauth2.NewClient(ctx, src), ids, timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, ids *IDMap, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{svc: svc, ids: ids, timeout: timeout}, nil
}

// ListLists returns all task lists in API order.
// Google task lists carry no completion state, so IsVisible is always false.
func (c *Client) ListLists(ctx context.Context) ([]service.RemoteList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.RemoteList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			id, err := c.ids.ID(list.Id)
			if err != nil {
				return err
			}
			result = append(result, service.RemoteList{ID: id, Title: list.Title})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ListSubTasks returns every task of a list, completed and hidden ones included.
func (c *Client) ListSubTasks(ctx context.Context, listID int64) ([]service.RemoteSubTask, error) {
	remoteID, err := c.remoteID(listID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.RemoteSubTask
	err = c.svc.Tasks.List(remoteID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				id, err := c.ids.ID(task.Id)
				if err != nil {
					return err
				}
				result = append(result, service.RemoteSubTask{
					ID:      id,
					Content: task.Title,
					Done:    task.Status == statusCompleted,
				})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateList creates a task list and returns its identifier.
func (c *Client) CreateList(ctx context.Context, title string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return 0, wrapError(err)
	}
	return c.ids.ID(list.Id)
}

// UpdateList renames a task list. visible has nowhere to go and is dropped.
func (c *Client) UpdateList(ctx context.Context, listID int64, title string, visible bool) (int64, error) {
	remoteID, err := c.remoteID(listID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Patch(remoteID, &tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return 0, wrapError(err)
	}
	if list.Id == "" {
		return 0, nil
	}
	return c.ids.ID(list.Id)
}

// DeleteList deletes a task list with its tasks.
func (c *Client) DeleteList(ctx context.Context, listID int64) error {
	remoteID, err := c.remoteID(listID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(remoteID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return c.ids.Forget(listID)
}

func (c *Client) remoteID(id int64) (string, error) {
	s, ok := c.ids.Remote(id)
	if !ok {
		return "", fmt.Errorf("%w: list %d", service.ErrNotFound, id)
	}
	return s, nil
}

// wrapError maps API errors onto the service error kinds.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrNetwork)
	}

	var rerr *oauth2.RetrieveError
	if errors.Is(err, service.ErrAuth) || errors.As(err, &rerr) {
		return service.ErrAuth
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.ErrAuth
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", service.ErrNotFound, gerr.Message)
		default:
			return fmt.Errorf("%w: HTTP %d: %s", service.ErrNetwork, gerr.Code, gerr.Message)
		}
	}
	return fmt.Errorf("%w: %v", service.ErrNetwork, err)
}

// TokenSource refreshes the credential held by base through conf.
// It starts over whenever base hands out a different access token, which
// happens after a new login.
func TokenSource(ctx context.Context, conf *oauth2.Config, base oauth2.TokenSource) oauth2.TokenSource {
	return &providerSource{ctx: ctx, conf: conf, base: base}
}

type providerSource struct {
	ctx  context.Context
	conf *oauth2.Config
	base oauth2.TokenSource

	mu     sync.Mutex
	access string
	src    oauth2.TokenSource
}

func (p *providerSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, service.ErrAuth
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil || tok.AccessToken != p.access {
		p.access = tok.AccessToken
		p.src = p.conf.TokenSource(p.ctx, tok)
	}
	return p.src.Token()
}
