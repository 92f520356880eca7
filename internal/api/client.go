// Package api implements the authenticated HTTP client for the NDA QS
// dashboard backend.
//
// Every response carries a {success, message, detail, data} envelope which
// the client decodes regardless of HTTP status; the backend does not use
// status codes as the sole success signal. Failures are folded into the
// domain error taxonomy:
//
//   - transport failure (no response)       -> EUNAVAILABLE
//   - 401 on an authenticated call          -> EUNAUTHORIZED (session expired)
//   - 403                                   -> EFORBIDDEN
//   - other non-2xx or success:false bodies -> EINVALID/ENOTFOUND/EREMOTE
//     with the backend's detail text
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/metrics"
)

const (
	// DefaultTimeout bounds every request. The browser client had no
	// timeout at all, which let a hung request block a dashboard section
	// forever.
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
)

// SessionSource provides the current session for bearer auth. Implemented by
// *session.Store; injected so tests can substitute a fixed session.
type SessionSource interface {
	Load() (domain.Session, error)
}

// StaticSession is a SessionSource that always returns the same session.
// Useful in tests and for one-shot calls made right after login.
type StaticSession domain.Session

func (s StaticSession) Load() (domain.Session, error) {
	return domain.Session(s), nil
}

// Config contains the client's construction parameters.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Sessions SessionSource
	Logger   *slog.Logger
}

// Client performs authenticated requests against the dashboard backend.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionSource
	logger   *slog.Logger
}

// New creates a Client. BaseURL and Sessions are required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session source is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the backend's uniform response wrapper. Errors arrive either
// as {detail} with a non-2xx status (FastAPI convention) or as
// {success:false, ...} with a 2xx status.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`

	// ProcessedFile sits beside the envelope on the CVR process endpoint
	// rather than inside data.
	ProcessedFile string `json:"processed_file"`
}

// failureMessage picks the most specific error text the backend offered.
func (e *envelope) failureMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

// body describes how a request payload is encoded.
type body struct {
	json        interface{} // marshalled as application/json
	form        url.Values  // encoded as application/x-www-form-urlencoded
	reader      io.Reader   // raw body (multipart)
	contentType string      // content type for reader bodies
}

// do executes one request against the backend and returns the decoded
// envelope. endpoint is a low-cardinality label for metrics/logs; path is
// the concrete URL path.
func (c *Client) do(ctx context.Context, endpoint, method, path string, reqBody body) (*envelope, error) {
	op := "api." + endpoint
	start := time.Now()

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return nil, domain.Internal(err, op, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, method, "network_error").Inc()
		c.logger.Error("Backend unreachable", "endpoint", endpoint, "error", err)
		return nil, domain.Unavailable(err, op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, method, "read_error").Inc()
		return nil, domain.Wrap(err, domain.EUNAVAILABLE, op, "read response")
	}

	env := &envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			metrics.APIRequestsTotal.WithLabelValues(endpoint, method, "decode_error").Inc()
			return nil, domain.Wrap(err, domain.EREMOTE, op,
				fmt.Sprintf("malformed response (status %d)", resp.StatusCode))
		}
	}

	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err := c.checkStatus(op, resp.StatusCode, env); err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, method, "failure").Inc()
		c.logger.Warn("Backend request failed",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, err
	}

	metrics.APIRequestsTotal.WithLabelValues(endpoint, method, "success").Inc()
	c.logger.Debug("Backend request completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return env, nil
}

// newRequest builds the HTTP request: URL join, body encoding, bearer token
// when a session is present, and a correlation ID for log matching against
// backend logs.
func (c *Client) newRequest(ctx context.Context, method, path string, reqBody body) (*http.Request, error) {
	var (
		r           io.Reader
		contentType string
	)
	switch {
	case reqBody.json != nil:
		data, err := json.Marshal(reqBody.json)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		r = bytes.NewReader(data)
		contentType = "application/json"
	case reqBody.form != nil:
		r = strings.NewReader(reqBody.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case reqBody.reader != nil:
		r = reqBody.reader
		contentType = reqBody.contentType
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	sess, err := c.sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	return req, nil
}

// checkStatus folds the HTTP status and the envelope's success flag into the
// error taxonomy. A 2xx with success:false is still a failure.
func (c *Client) checkStatus(op string, status int, env *envelope) error {
	switch {
	case status == http.StatusUnauthorized:
		metrics.SessionExpiries.Inc()
		msg := env.failureMessage()
		if msg == "request failed" {
			msg = "session expired or invalid, log in again"
		}
		return domain.Unauthorized(op, msg)
	case status == http.StatusForbidden:
		return domain.Forbidden(op, env.failureMessage())
	case status == http.StatusNotFound:
		return domain.Errorf(domain.ENOTFOUND, op, "%s", env.failureMessage())
	case status == http.StatusBadRequest:
		return domain.Invalid(op, env.failureMessage())
	case status < 200 || status > 299:
		return domain.Remote(op, env.failureMessage())
	case !env.Success:
		return domain.Remote(op, env.failureMessage())
	}
	return nil
}

// decodeData unmarshals the envelope's data field into v.
func decodeData(op string, env *envelope, v interface{}) error {
	if len(env.Data) == 0 {
		return domain.Remote(op, "response carried no data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return domain.Wrap(err, domain.EREMOTE, op, "malformed data payload")
	}
	return nil
}

// uploadBody streams file content into a multipart body with a single
// "file" part, matching the backend's UploadFile parameter.
func uploadBody(filename string, content io.Reader, contentType string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
