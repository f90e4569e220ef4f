// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/model"
)

// Configuration constants.
const (
	// DefaultBaseURL is the API root of a local backend.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout bounds every request attempt.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// RefreshPath exchanges a refresh token for a new access token.
	RefreshPath = "/auth/refresh"
)

// authPaths never trigger a token refresh on 401: a failed login is a
// credentials problem, not an expired session.
var authPaths = map[string]bool{
	"/auth/login":                  true,
	"/auth/register":               true,
	RefreshPath:                    true,
	"/auth/request-password-reset": true,
	"/auth/reset-password":         true,
}

// IsAuthPath reports whether path is an authentication endpoint.
func IsAuthPath(path string) bool {
	return authPaths[path]
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource supplies and persists the bearer tokens. storage.TokenStore
// implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	Save(model.TokenPair) error
	Clear() error
}

// =============================================================================
// CLIENT
// =============================================================================

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// RateLimitRPS > 0 enables a client-side token bucket.
	RateLimitRPS float64
	RateBurst    int

	HTTPClient *http.Client
	Logger     *zap.Logger

	// OnSessionExpired runs after a failed refresh has cleared the tokens.
	OnSessionExpired func()
}

// OptionsFromConfig maps the api config section onto Options.
func OptionsFromConfig(c config.APIConfig, version string) Options {
	return Options{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout(),
		UserAgent:    "compass/" + version,
		RateLimitRPS: c.RateLimitRPS,
		RateBurst:    c.RateBurst,
	}
}

// Client is the shared request client. It is safe for concurrent use.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	log       *zap.Logger
	tokens    TokenSource

	refreshGroup singleflight.Group

	mu        sync.RWMutex
	onExpired func()
}

// New creates a Client. tokens may be nil for anonymous use.
func New(tokens TokenSource, opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
		log:       opts.Logger,
		tokens:    tokens,
		onExpired: opts.OnSessionExpired,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = "compass"
	}
	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Tokens returns the token source (may be nil).
func (c *Client) Tokens() TokenSource { return c.tokens }

// SetSessionExpiredHook replaces the OnSessionExpired callback.
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// =============================================================================
// REQUESTS
// =============================================================================

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL and starts with "/".
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil. Form takes precedence.
	Body any
	// Form is sent as application/x-www-form-urlencoded.
	Form url.Values
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post performs a JSON POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// PostForm performs a form-encoded POST.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

// Put performs a JSON PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Query: query}, out)
}

// Do performs req and decodes a JSON response into out (unless out is nil or
// the body is empty). A raw *[]byte out receives the body unparsed.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := c.Raw(ctx, req)
	if err != nil {
		return err
	}
	return decode(req, body, out)
}

// Raw performs req and returns the response body.
func (c *Client) Raw(ctx context.Context, req Request) ([]byte, error) {
	payload, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	token := c.accessToken()
	status, body, err := c.send(ctx, req, payload, contentType, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !IsAuthPath(req.Path) && c.tokens != nil {
		newToken, rerr := c.refresh(ctx, token)
		if rerr != nil {
			c.log.Debug("token refresh failed", zap.Error(rerr))
			return nil, newStatusError(req.Method, req.Path, status, body)
		}
		// Exactly one replay; a second 401 is final.
		status, body, err = c.send(ctx, req, payload, contentType, newToken)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		apiErr := newStatusError(req.Method, req.Path, status, body)
		if status >= 500 {
			c.log.Error("api server error", zap.String("method", req.Method),
				zap.String("path", req.Path), zap.Int("status", status), zap.String("detail", apiErr.Detail))
		} else {
			c.log.Warn("api request rejected", zap.String("method", req.Method),
				zap.String("path", req.Path), zap.Int("status", status), zap.String("detail", apiErr.Detail))
		}
		return nil, apiErr
	}
	return body, nil
}

func (c *Client) accessToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// send performs a single HTTP attempt bounded by the client timeout.
func (c *Client) send(ctx context.Context, req Request, payload []byte, contentType, token string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &Error{Kind: ErrNetwork, Method: req.Method, Path: req.Path, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("api request failed", zap.String("method", req.Method),
			zap.String("path", req.Path), zap.String("request_id", requestID), zap.Error(err))
		return 0, nil, &Error{Kind: ErrNetwork, Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return 0, nil, &Error{Kind: ErrNetwork, Method: req.Method, Path: req.Path, Err: err}
	}

	c.log.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)
	return resp.StatusCode, body, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func encodeBody(req Request) ([]byte, string, error) {
	switch {
	case req.Form != nil:
		return []byte(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		return b, "application/json", nil
	}
	return nil, "", nil
}

func decode(req Request, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: ErrServer, Method: req.Method, Path: req.Path,
			Detail: "malformed response", Err: err}
	}
	return nil
}

// =============================================================================
// TOKEN REFRESH
// =============================================================================

// ErrNoRefreshToken is returned when a refresh is needed but none is stored.
var ErrNoRefreshToken = errors.New("no refresh token")

// refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share one exchange. usedToken is the access token the
// failed request carried: if another caller already replaced it, the new
// token is returned without a second exchange.
func (c *Client) refresh(ctx context.Context, usedToken string) (string, error) {
	if current := c.tokens.AccessToken(); current != "" && current != usedToken {
		return current, nil
	}

	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		token, err := c.exchange(context.WithoutCancel(ctx))
		if err != nil {
			_ = c.tokens.Clear()
			c.mu.RLock()
			hook := c.onExpired
			c.mu.RUnlock()
			if hook != nil {
				hook()
			}
			return "", err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchange(ctx context.Context) (string, error) {
	rt := c.tokens.RefreshToken()
	if rt == "" {
		return "", ErrNoRefreshToken
	}

	payload, _ := json.Marshal(map[string]string{"refresh_token": rt})
	req := Request{Method: http.MethodPost, Path: RefreshPath}
	status, body, err := c.send(ctx, req, payload, "application/json", "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", newStatusError(req.Method, req.Path, status, body)
	}

	var pair model.TokenPair
	if err := json.Unmarshal(body, &pair); err != nil || pair.AccessToken == "" {
		return "", &Error{Kind: ErrAuth, Status: status, Method: req.Method, Path: req.Path,
			Detail: "refresh response carried no access token"}
	}
	if err := c.tokens.Save(pair); err != nil {
		return "", fmt.Errorf("failed to store refreshed token: %w", err)
	}
	c.log.Info("access token refreshed")
	return pair.AccessToken, nil
}
