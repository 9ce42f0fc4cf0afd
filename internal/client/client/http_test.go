package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/metrics"
	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu     sync.Mutex
	token  string
	clears []session.Reason
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Clear(_ context.Context, r session.Reason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.clears = append(f.clears, r)
	return nil
}

type captured struct {
	mu      sync.Mutex
	headers []http.Header
	hits    atomic.Int32
}

func (c *captured) last() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.headers) == 0 {
		return nil
	}
	return c.headers[len(c.headers)-1]
}

// newBackend serves a minimal fake of the backend under prefix.
func newBackend(t *testing.T, prefix string) (*httptest.Server, *captured) {
	t.Helper()
	cap := &captured{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			cap.hits.Add(1)
			cap.mu.Lock()
			cap.headers = append(cap.headers, req.Header.Clone())
			cap.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})

	r.Route(prefix+"/", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect email or password"}`)
		})
		r.Post("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"access_token":"new-token","user":{"email":"a@b.c"}}`)
		})
		r.Post("/auth/admin-login", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"access_token":"admin-token"}`)
		})
		r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
				return
			}
			_, _ = io.WriteString(w, `{"email":"a@b.c","name":"Asha"}`)
		})
		r.Get("/fusion/health", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"status":"ok"}`)
		})
		r.Delete("/community/posts/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/community/upload-image", func(w http.ResponseWriter, req *http.Request) {
			f, hdr, err := req.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = f.Close()
			_, _ = io.WriteString(w, `{"url":"/community/images/`+hdr.Filename+`"}`)
		})
		r.Get("/status/{code}", func(w http.ResponseWriter, req *http.Request) {
			switch chi.URLParam(req, "code") {
			case "400":
				w.WriteHeader(400)
				_, _ = io.WriteString(w, `{"detail":"Invalid crop"}`)
			case "400list":
				w.WriteHeader(400)
				_, _ = io.WriteString(w, `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"value is not a valid email address"}]}`)
			case "400plain":
				w.WriteHeader(400)
				_, _ = io.WriteString(w, `Bad Request`)
			case "403":
				w.WriteHeader(403)
			case "404":
				w.WriteHeader(404)
				_, _ = io.WriteString(w, `{"detail":"Post not found"}`)
			case "409":
				w.WriteHeader(409)
				_, _ = io.WriteString(w, `{"detail":"Email already registered"}`)
			case "500":
				w.WriteHeader(500)
				_, _ = io.WriteString(w, `{"detail":"Error loading dashboard data"}`)
			case "418":
				w.WriteHeader(418)
				_, _ = io.WriteString(w, `{"detail":"I'm a teapot"}`)
			default:
				w.WriteHeader(502)
			}
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, cap
}

func newTestClient(t *testing.T, baseURL string, sess Session, opts ...Option) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(baseURL, sess, opts...)
	require.NoError(t, err)
	return c
}

func TestInvoke_AttachesTokenOnProtectedPaths(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{token: "good"})

	var u models.User
	require.NoError(t, c.Invoke(context.Background(), http.MethodGet, "/auth/me", nil, &u))

	assert.Equal(t, "Asha", u.Name)
	h := cap.last()
	assert.Equal(t, "Bearer good", h.Get("Authorization"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestInvoke_NoTokenNoHeader(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{})

	require.NoError(t, c.Ping(context.Background()))
	assert.Empty(t, cap.last().Get("Authorization"))
}

func TestInvoke_PublicPathsNeverGetToken(t *testing.T) {
	for _, prefix := range []string{"", "/api"} {
		ts, cap := newBackend(t, prefix)
		sess := &fakeSession{token: "stale"}
		c := newTestClient(t, ts.URL+prefix, sess)
		ctx := context.Background()

		body := models.LoginRequest{Email: "a@b.c", Password: "secret"}
		_ = c.Invoke(ctx, http.MethodPost, "/auth/login", body, nil)
		assert.Empty(t, cap.last().Get("Authorization"), "login, prefix %q", prefix)

		_ = c.Invoke(ctx, http.MethodPost, "auth/signup/", map[string]string{"email": "a@b.c"}, nil)
		assert.Empty(t, cap.last().Get("Authorization"), "signup, prefix %q", prefix)

		_ = c.Invoke(ctx, http.MethodPost, "/auth/admin-login", body, nil)
		assert.Empty(t, cap.last().Get("Authorization"), "admin-login, prefix %q", prefix)
		assert.Equal(t, "application/json", cap.last().Get("Content-Type"))
	}
}

func TestInvoke_ProtectedUnauthorizedClearsSession(t *testing.T) {
	ts, _ := newBackend(t, "")
	sess := &fakeSession{token: "expired"}
	c := newTestClient(t, ts.URL, sess)

	err := c.Invoke(context.Background(), http.MethodGet, "/auth/me", nil, nil)

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, msgUnauthorized, Message(err))
	assert.Equal(t, []session.Reason{session.ReasonUnauthorized}, sess.clears)
	assert.False(t, c.IsAuthenticated())
}

func TestInvoke_PublicUnauthorizedIsInvalidCredentials(t *testing.T) {
	ts, _ := newBackend(t, "")
	sess := &fakeSession{token: "keep-me"}
	c := newTestClient(t, ts.URL, sess)

	err := c.Invoke(context.Background(), http.MethodPost, "/auth/login",
		models.LoginRequest{Email: "a@b.c", Password: "wrong"}, nil)

	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Incorrect email or password", Message(err))
	assert.Empty(t, sess.clears)
	assert.Equal(t, "keep-me", sess.Token())
}

func TestInvoke_StatusClassification(t *testing.T) {
	ts, _ := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{token: "good"})

	tests := []struct {
		code    string
		kind    Kind
		status  int
		message string
	}{
		{"400", KindInvalidInput, 400, "Invalid crop"},
		{"400list", KindInvalidInput, 400, "field required; value is not a valid email address"},
		{"400plain", KindInvalidInput, 400, msgInvalidInput},
		{"403", KindForbidden, 403, msgForbidden},
		{"404", KindNotFound, 404, msgNotFound},
		{"409", KindConflict, 409, "Email already registered"},
		{"500", KindServerError, 500, msgServerError},
		{"418", KindUnknownStatus, 418, "I'm a teapot"},
		{"502", KindUnknownStatus, 502, "Request failed with status 502"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			err := c.Invoke(context.Background(), http.MethodGet, "/status/"+tc.code, nil, nil)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, tc.message, e.Message)
			assert.Equal(t, "/status/"+tc.code, e.Path)
		})
	}
}

func TestInvoke_NoResponseIsUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newTestClient(t, url, &fakeSession{token: "t"}, WithHTTPClient(&http.Client{Timeout: time.Second}))
	err := c.Invoke(context.Background(), http.MethodGet, "/fusion/dashboard", nil, nil)

	require.ErrorIs(t, err, ErrUnreachable)
	assert.NotErrorIs(t, err, ErrServerError)
	assert.Equal(t, msgUnreachable, Message(err))
}

func TestInvoke_TimeoutIsUnreachable(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	c := newTestClient(t, ts.URL, &fakeSession{}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	err := c.Invoke(context.Background(), http.MethodGet, "/slow", nil, nil)

	assert.Equal(t, KindUnreachable, KindOf(err))
}

func TestInvoke_ValidationFailureSendsNothing(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{})

	err := c.Invoke(context.Background(), http.MethodPost, "/auth/login",
		models.LoginRequest{Email: "not-an-email"}, nil)

	require.ErrorIs(t, err, ErrClientError)
	assert.Contains(t, Message(err), "email must be a valid email address")
	assert.Contains(t, Message(err), "password is required")
	assert.Zero(t, cap.hits.Load())
}

func TestInvoke_EncodeFailureIsClientError(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{})

	err := c.Invoke(context.Background(), http.MethodPost, "/community/posts", map[string]any{"c": make(chan int)}, nil)

	assert.Equal(t, KindClientError, KindOf(err))
	assert.Zero(t, cap.hits.Load())
}

func TestInvoke_BadPathIsClientError(t *testing.T) {
	c := newTestClient(t, "http://localhost:1", &fakeSession{})
	err := c.Invoke(context.Background(), http.MethodGet, "%zz", nil, nil)
	assert.Equal(t, KindClientError, KindOf(err))
}

func TestInvoke_DecodeFailureIsClientError(t *testing.T) {
	ts, _ := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{})

	var out []int
	err := c.Invoke(context.Background(), http.MethodGet, "/fusion/health", nil, &out)
	assert.Equal(t, KindClientError, KindOf(err))
}

func TestInvoke_EmptySuccessBody(t *testing.T) {
	ts, _ := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{token: "t"})

	var out map[string]any
	require.NoError(t, c.Invoke(context.Background(), http.MethodDelete, "/community/posts/3", nil, &out))
	assert.Nil(t, out)
}

func TestInvoke_AbsoluteURL(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, "http://localhost:1", &fakeSession{token: "t"})

	require.NoError(t, c.Invoke(context.Background(), http.MethodGet, ts.URL+"/fusion/health", nil, nil))
	assert.Equal(t, int32(1), cap.hits.Load())
}

func TestInvoke_ForeignHostGetsNoTokenAndKeepsSession(t *testing.T) {
	backend, _ := newBackend(t, "")
	foreign, cap := newBackend(t, "")
	sess := &fakeSession{token: "secret"}
	c := newTestClient(t, backend.URL, sess)

	err := c.Invoke(context.Background(), http.MethodGet, foreign.URL+"/auth/me", nil, nil)

	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Empty(t, cap.last().Get("Authorization"))
	assert.Empty(t, sess.clears)
	assert.Equal(t, "secret", sess.Token())
}

func TestInvoke_AbsoluteURLOutsidePrefixIsForeign(t *testing.T) {
	ts, cap := newBackend(t, "")
	sess := &fakeSession{token: "secret"}
	c := newTestClient(t, ts.URL+"/api", sess)

	require.NoError(t, c.Invoke(context.Background(), http.MethodGet, ts.URL+"/fusion/health", nil, nil))
	assert.Empty(t, cap.last().Get("Authorization"))
}

func TestInvoke_SameOriginAbsoluteURLIsProtected(t *testing.T) {
	ts, cap := newBackend(t, "")
	sess := &fakeSession{token: "stale"}
	c := newTestClient(t, ts.URL, sess)

	err := c.Invoke(context.Background(), http.MethodGet, ts.URL+"/auth/me", nil, nil)

	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, "Bearer stale", cap.last().Get("Authorization"))
	assert.Equal(t, []session.Reason{session.ReasonUnauthorized}, sess.clears)
}

func TestInvoke_RateLimitCancelledIsClientError(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{}, WithRateLimit(0.001, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Invoke(ctx, http.MethodGet, "/fusion/health", nil, nil)
	assert.Equal(t, KindClientError, KindOf(err))
	assert.Zero(t, cap.hits.Load())
}

func TestInvoke_OpenBreakerIsUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newTestClient(t, url, &fakeSession{},
		WithMetrics(metrics.New()),
		WithCircuitBreaker(gobreaker.Settings{
			Timeout:     time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 },
		}))
	ctx := context.Background()

	first := c.Invoke(ctx, http.MethodGet, "/fusion/health", nil, nil)
	require.ErrorIs(t, first, ErrUnreachable)

	second := c.Invoke(ctx, http.MethodGet, "/fusion/health", nil, nil)
	require.ErrorIs(t, second, ErrUnreachable)
	assert.True(t, errors.Is(second, gobreaker.ErrOpenState))
}

func TestInvoke_BreakerIgnoresHTTPErrors(t *testing.T) {
	ts, _ := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{token: "t"},
		WithCircuitBreaker(gobreaker.Settings{
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 },
		}))

	for i := 0; i < 3; i++ {
		err := c.Invoke(context.Background(), http.MethodGet, "/status/500", nil, nil)
		require.ErrorIs(t, err, ErrServerError)
	}
}

func TestUpload_Multipart(t *testing.T) {
	ts, cap := newBackend(t, "")
	c := newTestClient(t, ts.URL, &fakeSession{token: "t"})

	var res models.UploadResult
	err := c.Upload(context.Background(), "/community/upload-image", "file", "leaf.png", []byte("png"), &res)

	require.NoError(t, err)
	assert.Equal(t, "/community/images/leaf.png", res.URL)
	assert.Contains(t, cap.last().Get("Content-Type"), "multipart/form-data")
	assert.Equal(t, "Bearer t", cap.last().Get("Authorization"))
}

func TestNewHTTPClient_RejectsBadBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		_, err := NewHTTPClient(u, &fakeSession{})
		assert.Errorf(t, err, "base %q", u)
	}
}

func TestIsAuthenticated(t *testing.T) {
	sess := &fakeSession{}
	c := newTestClient(t, "http://localhost:8000", sess)
	assert.False(t, c.IsAuthenticated())
	sess.token = "x"
	assert.True(t, c.IsAuthenticated())
}
