// Package supabase is a minimal client for the Supabase auth (GoTrue) and
// database (PostgREST) HTTP APIs.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/abdusco/linkbox/internal/logger"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	instance *Client
	initErr  error
	once     sync.Once
)

type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is safe for concurrent use and immutable after construction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// Init returns the process-wide client, constructing it on first use.
func Init(cfg Config) (*Client, error) {
	once.Do(func() {
		instance, initErr = New(cfg)
	})
	return instance, initErr
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase API key is required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid supabase URL %q", cfg.URL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        logger.With("component", "supabase", "host", u.Host),
	}, nil
}

// Auth returns the identity-provider view of the client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// Links returns the store view of the client over the "links" table.
func (c *Client) Links() *LinksTable {
	return &LinksTable{client: c, table: "links"}
}

// Error is a non-2xx response from Supabase.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.StatusCode, e.Message)
}

type response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// do sends the request with the project API key. When accessToken is set it is
// used as the bearer credential instead of the API key.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header, accessToken string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.apiKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", req.URL.Path).Msg("request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream call")

	return &response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header,
	}, nil
}

// parseError extracts a message from the error shapes used by GoTrue and PostgREST.
func parseError(statusCode int, body []byte) error {
	e := &Error{StatusCode: statusCode}
	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "error_code", "code", "msg", "message", "error_description", "error")
		e.Code = firstNonEmpty(res[0].String(), res[1].String())
		e.Message = firstNonEmpty(res[2].String(), res[3].String(), res[4].String(), res[5].String())
	}
	if e.Message == "" {
		e.Message = http.StatusText(statusCode)
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
