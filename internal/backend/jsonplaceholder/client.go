// Package jsonplaceholder implements the service.Service interface over a
// JSONPlaceholder-style REST collection (GET/POST /todos, PATCH/DELETE /todos/{id}).
package jsonplaceholder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskapp/internal/config"
	"taskapp/internal/logging"
	"taskapp/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// collectionPath is the remote task collection.
	collectionPath = "/todos"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	token   string
	logger  *slog.Logger

	// httpClient is built on first use.
	once       sync.Once
	httpClient *http.Client
}

// New creates a client from configuration. No connection is made until the first call.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		baseURL: base,
		timeout: timeout,
		token:   cfg.APIToken,
		logger:  logging.OrDiscard(logger),
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    base,
		timeout:    APITimeout,
		logger:     logging.Discard(),
		httpClient: httpClient,
	}
	c.once.Do(func() {})
	return c, nil
}

// SetTimeout overrides the per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base_url: %q is not an http(s) URL", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// client returns the shared HTTP client, building it on first use.
func (c *Client) client() *http.Client {
	c.once.Do(func() {
		hc := &http.Client{}
		if c.token != "" {
			// oauth2.NewClient only reads ctx for a custom base client; none is set.
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"})
			hc = oauth2.NewClient(context.Background(), src)
		}
		hc.Timeout = c.timeout
		c.httpClient = hc
	})
	return c.httpClient
}

// List returns tasks, optionally restricted to one owner.
func (c *Client) List(ctx context.Context, opts service.ListOptions) ([]service.Task, error) {
	path := collectionPath
	if opts.UserID != 0 {
		path += "?userId=" + strconv.Itoa(opts.UserID)
	}

	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, wrapError(service.OpList, 0, err)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// Create stores a new task and returns it with the assigned ID.
func (c *Client) Create(ctx context.Context, task service.Task) (service.Task, error) {
	task.ID = 0

	var created service.Task
	if err := c.do(ctx, http.MethodPost, collectionPath, task, &created); err != nil {
		return service.Task{}, wrapError(service.OpCreate, 0, err)
	}
	if created.ID == 0 {
		return service.Task{}, wrapError(service.OpCreate, 0, errors.New("response carried no id"))
	}
	return created, nil
}

// Update applies a partial update and returns the confirmed task.
func (c *Client) Update(ctx context.Context, id int, patch service.Patch) (service.Task, error) {
	var updated service.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id), patch, &updated); err != nil {
		return service.Task{}, wrapError(service.OpUpdate, id, err)
	}
	if updated.ID == 0 {
		updated.ID = id
	}
	return updated, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return wrapError(service.OpDelete, id, err)
	}
	return nil
}

func taskPath(id int) string {
	return collectionPath + "/" + strconv.Itoa(id)
}

// do performs one request under the client timeout. body is JSON-encoded when
// non-nil; the response is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	res, err := c.client().Do(req)
	if err != nil {
		c.logger.Debug("remote request failed", "method", method, "path", path, "err", err)
		return err
	}
	defer googleapi.CloseBody(res)

	c.logger.Debug("remote request", "method", method, "path", path,
		"status", res.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wrapError wraps a failed call as a service.RemoteError.
func wrapError(op string, id int, err error) error {
	if err == nil {
		return nil
	}
	re := &service.RemoteError{Op: op, ID: id, Cause: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		re.Status = gerr.Code
	}
	return re
}
