package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// maxErrorBody caps how much of an error response is kept on RemoteAPIError.
const maxErrorBody = 2048

// Registry is the read API the sync engine needs from the remote registry.
type Registry interface {
	// GetPerson fetches one person. A missing person is ErrNotFound.
	GetPerson(ctx context.Context, id string) (*Person, error)
	// ListPeople fetches one listing page. An empty pageURL starts a traversal
	// with filter; otherwise pageURL is a "next" link and filter is ignored.
	ListPeople(ctx context.Context, filter Filter, pageURL string) (*PeoplePage, error)
}

// Client is the rate-limited HTTP client for the registry. It never retries;
// retry policy belongs to the batch runner.
type Client struct {
	baseURL   *url.URL
	token     string
	scheme    string
	userAgent string
	timeout   time.Duration
	http      *http.Client

	pageDelay time.Duration
	mu        sync.Mutex
	lastPage  time.Time
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the per-call timeout taken from Config.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSleep replaces the pacing sleep, used by tests to observe page delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock replaces the time source used for pacing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a registry client from the configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid registry base URL %q", cfg.BaseURL)
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	c := &Client{
		baseURL:   u,
		token:     cfg.Token,
		scheme:    cfg.AuthScheme,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout(),
		http:      &http.Client{},
		pageDelay: cfg.PageDelay(),
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetPerson fetches people/{id}/ and keeps the raw body on the result.
func (c *Client) GetPerson(ctx context.Context, id string) (*Person, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "people/"+url.PathEscape(id)+"/", nil, &raw); err != nil {
		return nil, err
	}

	var p Person
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode person %s: %w", id, err)
	}
	p.Raw = raw
	return &p, nil
}

// ListPeople fetches one page of people/, newest-modified first. Consecutive
// continuation pages are spaced by at least the configured page delay.
func (c *Client) ListPeople(ctx context.Context, filter Filter, pageURL string) (*PeoplePage, error) {
	if err := c.pace(ctx, pageURL != ""); err != nil {
		return nil, err
	}

	var page PeoplePage
	if pageURL != "" {
		if err := c.GetURL(ctx, pageURL, &page); err != nil {
			return nil, err
		}
		return &page, nil
	}

	query := url.Values{}
	for k, v := range filter {
		query[k] = append([]string(nil), v...)
	}
	query.Set("order_by", "-date_modified")
	query.Set("fields", "id,date_modified")

	if err := c.Get(ctx, "people/", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get performs a GET against path relative to the base URL and decodes the JSON
// body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("invalid registry path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return c.do(ctx, u.String(), out)
}

// GetURL performs a GET against an absolute URL, typically a "next" link.
func (c *Client) GetURL(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, rawURL, out)
}

func (c *Client) do(ctx context.Context, target string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.scheme+" "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "GET " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RemoteAPIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TransportError{Op: "read " + req.URL.Path, Err: err}
		}
		return fmt.Errorf("decode registry response %s: %w", req.URL.Path, err)
	}
	return nil
}

// pace blocks until pageDelay has elapsed since the previous listing call when
// continuing a traversal, then records the current call.
func (c *Client) pace(ctx context.Context, continuation bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if continuation && c.pageDelay > 0 && !c.lastPage.IsZero() {
		if wait := c.pageDelay - c.now().Sub(c.lastPage); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	c.lastPage = c.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
