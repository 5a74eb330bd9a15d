package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/greenshed/plantnode/internal/command"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// failed requests.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the initial delay between retry attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff.
	DefaultMaxRetryDelay = 10 * time.Second
)

// CommandError is a validation rejection from the node (the node answers
// HTTP 200 with an "error: ..." body; that legacy quirk stays on the wire
// but surfaces as a real error here).
type CommandError struct {
	Body string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("node rejected command: %s", e.Body)
}

// State is the parsed /cached-state dump.
type State struct {
	Raw        string
	Brightness string
	Power      string
	Function   string
	Color      string
	URI        string
}

// Client talks to one plant node's REST surface.
type Client struct {
	// BaseURL is the node's base URL (e.g. "http://192.168.4.16:80").
	BaseURL string

	// HTTPClient is the underlying HTTP client. If nil, a client with
	// DefaultTimeout is used.
	HTTPClient *http.Client

	// MaxRetries is the number of retry attempts for transport failures.
	MaxRetries int

	// RetryDelay is the initial delay between retries; it doubles per
	// attempt up to MaxRetryDelay.
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay.
	MaxRetryDelay time.Duration
}

// New creates a client for a node at ip:port.
func New(ip string, port int) *Client {
	return NewWithURL(fmt.Sprintf("http://%s:%d", ip, port))
}

// NewWithURL creates a client from a full base URL.
func NewWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

// Ping checks the node is reachable and answering its route listing.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/", nil)
	return err
}

// Routes returns the node's static route listing.
func (c *Client) Routes(ctx context.Context) (string, error) {
	return c.get(ctx, "/routes", nil)
}

// Documentation returns the static protocol description for a route.
func (c *Client) Documentation(ctx context.Context, route string) (string, error) {
	return c.get(ctx, route, url.Values{"documentation": {"true"}})
}

// CachedState fetches and parses the node's state cache dump.
func (c *Client) CachedState(ctx context.Context) (*State, error) {
	body, err := c.get(ctx, "/cached-state", nil)
	if err != nil {
		return nil, err
	}
	return parseState(body), nil
}

// Get reads the cached value for one category ("color: blue" -> "blue").
func (c *Client) Get(ctx context.Context, cat command.Category) (string, error) {
	body, err := c.get(ctx, "/"+string(cat), nil)
	if err != nil {
		return "", err
	}
	value, ok := strings.CutPrefix(body, string(cat)+": ")
	if !ok {
		return "", fmt.Errorf("unexpected response %q", body)
	}
	return value, nil
}

// Set validates nothing locally: the token goes to the node as-is and the
// node's token table is authoritative. A rejection comes back as a
// *CommandError.
func (c *Client) Set(ctx context.Context, cat command.Category, token string) error {
	return c.post(ctx, "/"+string(cat), url.Values{string(cat): {token}})
}

// Raw transmits a direct IR byte code.
func (c *Client) Raw(ctx context.Context, code int) error {
	return c.post(ctx, "/raw", url.Values{"raw": {strconv.Itoa(code)}})
}

// Moisture reads the node's soil moisture sensor. Returns -1 when the
// node reports the sensor as unknown.
func (c *Client) Moisture(ctx context.Context) (int, error) {
	body, err := c.get(ctx, "/moisture", nil)
	if err != nil {
		return 0, err
	}
	value, ok := strings.CutPrefix(body, "moisture: ")
	if !ok {
		return 0, fmt.Errorf("unexpected response %q", body)
	}
	if value == "unknown" {
		return -1, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("unexpected moisture value %q", value)
	}
	return n, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (string, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, func() io.Reader { return strings.NewReader(form.Encode()) })
	if err != nil {
		return err
	}
	if body != "success" {
		return &CommandError{Body: body}
	}
	return nil
}

// do performs the request with exponential-backoff retries on transport
// failures. Validation rejections are not transport failures and are
// never retried.
func (c *Client) do(req *http.Request, rewind func() io.Reader) (string, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	delay := c.RetryDelay
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return "", req.Context().Err()
			case <-time.After(delay):
			}
			delay *= 2
			if c.MaxRetryDelay > 0 && delay > c.MaxRetryDelay {
				delay = c.MaxRetryDelay
			}
			if rewind != nil {
				req.Body = io.NopCloser(rewind())
			}
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("node has no such route: %s", req.URL.Path)
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %d from node", resp.StatusCode)
		}
		return string(body), nil
	}
	return "", fmt.Errorf("node unreachable after %d attempts: %w", c.MaxRetries+1, lastErr)
}

// parseState extracts the tab-indented "key: value" lines from the dump.
func parseState(dump string) *State {
	s := &State{}
	for _, line := range strings.Split(dump, "\n") {
		line = strings.TrimPrefix(line, "\t")
		name, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		switch name {
		case "raw":
			s.Raw = value
		case "brightness":
			s.Brightness = value
		case "power":
			s.Power = value
		case "function":
			s.Function = value
		case "color":
			s.Color = value
		case "uri":
			s.URI = value
		}
	}
	return s
}
