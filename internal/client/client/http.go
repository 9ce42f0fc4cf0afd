package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/metrics"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/dmitrijs2005/agrisense/internal/common"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/dmitrijs2005/agrisense/internal/netx"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// HealthPath is probed by Ping.
const HealthPath = "/fusion/health"

// publicPaths never receive a bearer token, and a 401 on them means the
// submitted credentials were wrong rather than that the session expired.
var publicPaths = map[string]struct{}{
	"/auth/login":       {},
	"/auth/signup":      {},
	"/auth/admin-login": {},
}

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithRateLimit bounds outbound requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithCircuitBreaker guards the transport with a breaker built from st.
// Only transport failures count against it; any HTTP response is a
// success from the breaker's point of view.
func WithCircuitBreaker(st gobreaker.Settings) Option {
	return func(c *HTTPClient) { c.breakerSettings = &st }
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	base    *url.URL
	prefix  string
	sess    Session
	http    *http.Client
	log     logging.Logger
	metrics *metrics.Metrics
	limiter *rate.Limiter

	breakerSettings *gobreaker.Settings
	breaker         *gobreaker.CircuitBreaker[*http.Response]
}

// NewHTTPClient builds a client for the backend at baseURL. sess supplies
// the bearer token and is cleared on a protected 401.
func NewHTTPClient(baseURL string, sess Session, opts ...Option) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}

	c := &HTTPClient{
		base:   base,
		prefix: strings.TrimRight(base.Path, "/"),
		sess:   sess,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.breakerSettings != nil {
		c.breaker = c.newBreaker(*c.breakerSettings)
	}
	return c, nil
}

func (c *HTTPClient) newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker[*http.Response] {
	if st.Name == "" {
		st.Name = "backend"
	}
	if st.IsSuccessful == nil {
		st.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	next := st.OnStateChange
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		c.log.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		c.metrics.SetBreakerState(name, breakerStateValue(to))
		if next != nil {
			next(name, from, to)
		}
	}
	c.metrics.SetBreakerState(st.Name, 0)
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (c *HTTPClient) IsAuthenticated() bool {
	return c.sess.Token() != ""
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.Invoke(ctx, http.MethodGet, HealthPath, nil, nil)
}

func (c *HTTPClient) Invoke(ctx context.Context, method, path string, body, out any) error {
	var (
		payload     []byte
		contentType string
	)
	if body != nil {
		if err := validateBody(body); err != nil {
			return c.fail(ctx, method, path, clientError(err), time.Now())
		}
		b, err := json.Marshal(body)
		if err != nil {
			return c.fail(ctx, method, path, clientError(fmt.Errorf("encode request: %w", err)), time.Now())
		}
		payload, contentType = b, "application/json"
	}
	return c.do(ctx, method, path, payload, contentType, out)
}

func (c *HTTPClient) Upload(ctx context.Context, path, field, filename string, data []byte, out any) error {
	payload, contentType, err := netx.MultipartFile(field, filename, data)
	if err != nil {
		return c.fail(ctx, http.MethodPost, path, clientError(err), time.Now())
	}
	return c.do(ctx, http.MethodPost, path, payload, contentType, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte, contentType string, out any) error {
	start := time.Now()

	target, rel, own, err := c.resolve(path)
	if err != nil {
		return c.fail(ctx, method, path, clientError(err), start)
	}
	_, public := publicPaths[rel]
	// Only the backend itself sees the token or can end the session.
	protected := own && !public

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(ctx, method, rel, clientError(fmt.Errorf("rate limit: %w", err)), start)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return c.fail(ctx, method, rel, clientError(err), start)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if protected {
		if tok := c.sess.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}

	resp, err := c.send(req)
	if err != nil {
		return c.fail(ctx, method, rel, unreachable(err), start)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := classifyStatus(resp.StatusCode, serverDetail(data), public)
		if e.Kind == KindUnauthorized && protected {
			c.clearSession(ctx)
		}
		return c.fail(ctx, method, rel, e, start)
	}
	if readErr != nil {
		return c.fail(ctx, method, rel, unreachable(readErr), start)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return c.fail(ctx, method, rel, clientError(fmt.Errorf("decode response: %w", err)), start)
		}
	}

	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, metrics.OutcomeOK, elapsed)
	c.log.Debug(ctx, "request completed",
		"method", method, "path", rel, "status", resp.StatusCode,
		"request_id", requestID, "duration", elapsed)
	return nil
}

func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
}

// clearSession ends the session after a protected 401. It runs even if the
// request context was cancelled in the meantime.
func (c *HTTPClient) clearSession(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := c.sess.Clear(ctx, session.ReasonUnauthorized); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	c.metrics.SessionCleared(session.ReasonUnauthorized.String())
	c.log.Info(ctx, "session cleared after unauthorized response")
}

func (c *HTTPClient) fail(ctx context.Context, method, path string, e *Error, start time.Time) error {
	e.Method, e.Path = method, path
	c.metrics.ObserveRequest(method, e.Kind.String(), time.Since(start))
	c.log.Warn(ctx, "request failed",
		"method", method, "path", path, "kind", e.Kind.String(),
		"status", e.Status, "error", e.Err)
	return e
}

// resolve returns the absolute URL for path, the path relative to the
// base URL (no trailing slash) used to recognise public endpoints, and
// whether the target lives under the base URL at all.
func (c *HTTPClient) resolve(path string) (string, string, bool, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", "", false, fmt.Errorf("invalid path %q: %w", path, err)
	}

	var u url.URL
	if ref.IsAbs() {
		u = *ref
	} else {
		u = *c.base
		u.Path = c.prefix + "/" + strings.TrimLeft(ref.Path, "/")
		u.RawPath = ""
		u.RawQuery = ref.RawQuery
		u.Fragment = ""
	}

	own := c.sameOrigin(&u)
	rel := u.Path
	if own && c.prefix != "" {
		rel = strings.TrimPrefix(rel, c.prefix)
	}
	rel = strings.TrimRight(rel, "/")
	if rel == "" {
		rel = "/"
	}
	return u.String(), rel, own, nil
}

func (c *HTTPClient) sameOrigin(u *url.URL) bool {
	if !strings.EqualFold(u.Scheme, c.base.Scheme) || !strings.EqualFold(u.Host, c.base.Host) {
		return false
	}
	return c.prefix == "" || u.Path == c.prefix || strings.HasPrefix(u.Path, c.prefix+"/")
}
