// Package gateway is the HTTP/JSON client for the learning platform API.
// It implements assessment.Gateway and the auth, VARK and results
// endpoints around it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/credential"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/store"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Config configures the platform client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	Retry           RetryConfig
	SubjectCacheTTL time.Duration // 0 disables the subject cache
}

// RetryConfig configures retries of read-only calls. Calls that change
// platform state (login, start, submit) are never retried.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config pointing at a local platform.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8787",
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 300 * time.Millisecond,
			MaxWait:     3 * time.Second,
			Multiplier:  2.0,
		},
		SubjectCacheTTL: time.Minute,
	}
}

// Client talks to the platform API.
type Client struct {
	cfg      Config
	base     *url.URL
	http     *http.Client
	creds    credential.Store
	log      *logging.Logger
	events   store.EventRepo
	subjects *expirable.LRU[string, []assessment.Subject]
}

var _ assessment.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithEventRepo records every API round trip as a local event.
func WithEventRepo(r store.EventRepo) Option {
	return func(c *Client) { c.events = r }
}

// New creates a client for cfg.BaseURL using creds for the bearer token.
func New(cfg Config, creds credential.Store, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if creds == nil {
		creds = credential.NewMemoryStore("")
	}

	c := &Client{
		cfg:   cfg,
		base:  base,
		http:  &http.Client{Timeout: cfg.Timeout},
		creds: creds,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.SubjectCacheTTL > 0 {
		c.subjects = expirable.NewLRU[string, []assessment.Subject](8, nil, cfg.SubjectCacheTTL)
	}
	return c, nil
}

// BaseURL returns the platform root this client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// call describes one API request.
type call struct {
	op     string // user-facing verb phrase, e.g. "load subjects"
	method string
	path   string
	query  url.Values
	body   any
	schema string // payload schema name, "" to skip validation
	retry  bool   // read-only calls only
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do executes cl and decodes the envelope's data into out. A missing or
// null data field leaves out untouched.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	attempts := 1
	if cl.retry && c.cfg.Retry.MaxAttempts > 1 {
		attempts = c.cfg.Retry.MaxAttempts
	}

	var lastErr error
	for attempt := range attempts {
		err := c.once(ctx, cl, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts-1 {
			break
		}

		wait := c.backoff(attempt)
		c.log.DebugContext(ctx, "retrying api call", "path", cl.path, "attempt", attempt+1, "wait", wait)
		select {
		case <-ctx.Done():
			return &assessment.GatewayError{Op: cl.op, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, cl call, out any) error {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return &assessment.GatewayError{Op: cl.op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(ctx, cl, 0, start, err)
		return &assessment.GatewayError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.record(ctx, cl, resp.StatusCode, start, err)
		return &assessment.GatewayError{Op: cl.op, Status: resp.StatusCode, Err: err}
	}

	env, decodeErr := decodeEnvelope(raw)
	if err := statusError(cl.op, resp.StatusCode, env, decodeErr); err != nil {
		c.record(ctx, cl, resp.StatusCode, start, err)
		return err
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if cl.schema != "" {
			if err := validatePayload(cl.schema, env.Data); err != nil {
				c.record(ctx, cl, resp.StatusCode, start, err)
				return &assessment.GatewayError{Op: cl.op, Status: resp.StatusCode, Err: err}
			}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			err = fmt.Errorf("%w: %v", ErrMalformed, err)
			c.record(ctx, cl, resp.StatusCode, start, err)
			return &assessment.GatewayError{Op: cl.op, Status: resp.StatusCode, Err: err}
		}
	}

	c.record(ctx, cl, resp.StatusCode, start, nil)
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := *c.base
	u.Path = c.base.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeEnvelope accepts both wrapped responses and bare payloads.
func decodeEnvelope(raw []byte) (envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return envelope{}, nil
	}
	if !json.Valid(raw) {
		return envelope{}, fmt.Errorf("%w: body is not JSON", ErrMalformed)
	}
	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
			return env, nil
		}
	}
	return envelope{Data: raw}, nil
}

func statusError(op string, status int, env envelope, decodeErr error) error {
	msg := env.text()
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = "Your session has expired. Log in again."
		}
		return &assessment.GatewayError{Op: op, Status: status, Message: msg, Err: ErrUnauthorized}
	case status == http.StatusNotFound:
		return &assessment.GatewayError{Op: op, Status: status, Message: msg, Err: ErrNotFound}
	case status < 200 || status > 299:
		return &assessment.GatewayError{Op: op, Status: status, Message: msg,
			Err: fmt.Errorf("unexpected status %d", status)}
	case decodeErr != nil:
		return &assessment.GatewayError{Op: op, Status: status, Err: decodeErr}
	case env.Success != nil && !*env.Success:
		return &assessment.GatewayError{Op: op, Status: status, Message: msg, Err: errRejected}
	}
	return nil
}

// backoff computes the wait before retry number attempt+1.
func (c *Client) backoff(attempt int) time.Duration {
	rc := c.cfg.Retry
	wait := float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt))
	if wait > float64(rc.MaxWait) {
		wait = float64(rc.MaxWait)
	}
	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func (c *Client) record(ctx context.Context, cl call, status int, start time.Time, err error) {
	latency := time.Since(start).Milliseconds()
	if err != nil {
		c.log.WarnContext(ctx, "api call failed",
			"method", cl.method, "path", cl.path, "status", status, "latency_ms", latency, "error", err)
	} else {
		c.log.DebugContext(ctx, "api call",
			"method", cl.method, "path", cl.path, "status", status, "latency_ms", latency)
	}

	if c.events == nil {
		return
	}
	data := store.APICallEventData{
		Method:    cl.method,
		Path:      cl.path,
		Status:    status,
		LatencyMs: latency,
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	if recErr := c.events.AppendAPICall(ctx, data); recErr != nil {
		c.log.WarnContext(ctx, "record api call", "error", recErr)
	}
}
