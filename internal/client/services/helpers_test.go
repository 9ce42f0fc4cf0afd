package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/goccy/go-json"
)

// ---- fake client ----

type call struct {
	Method string
	Path   string
	Body   any
	Field  string
	File   string
	Data   []byte
}

// reply is the canned answer for one route: a JSON body or an error.
type reply struct {
	body string
	err  error
}

// fakeClient implements client.Client over a table of canned replies keyed
// by "METHOD path".
type fakeClient struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []call
	authed  bool
	pingErr error

	// hook runs before a reply is produced, outside the lock.
	hook func(c call)
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{replies: map[string]reply{}}
}

func (f *fakeClient) on(method, path, body string) *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+path] = reply{body: body}
	return f
}

func (f *fakeClient) fail(method, path string, err error) *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+path] = reply{err: err}
	return f
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeClient) respond(c call, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	r, ok := f.replies[c.Method+" "+c.Path]
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	if !ok {
		return &client.Error{Kind: client.KindNotFound, Status: 404, Message: "not found", Method: c.Method, Path: c.Path}
	}
	if r.err != nil {
		return r.err
	}
	if out == nil || r.body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(r.body), out); err != nil {
		return fmt.Errorf("fake decode %s %s: %w", c.Method, c.Path, err)
	}
	return nil
}

func (f *fakeClient) Invoke(_ context.Context, method, path string, body, out any) error {
	return f.respond(call{Method: method, Path: path, Body: body}, out)
}

func (f *fakeClient) Upload(_ context.Context, path, field, filename string, data []byte, out any) error {
	return f.respond(call{Method: "POST", Path: path, Field: field, File: filename, Data: data}, out)
}

func (f *fakeClient) IsAuthenticated() bool { return f.authed }

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

// ---- fake session ----

type fakeSession struct {
	mu      sync.Mutex
	token   string
	profile *models.User
	clears  []session.Reason
	setErr  error
}

var _ Session = (*fakeSession)(nil)

func (s *fakeSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *fakeSession) Profile() (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil, false
	}
	cp := *s.profile
	return &cp, true
}

func (s *fakeSession) Start(_ context.Context, token string, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		return session.ErrEmptyToken
	}
	s.token = token
	if u != nil {
		cp := *u
		s.profile = &cp
	}
	return nil
}

func (s *fakeSession) SetProfile(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	cp := *u
	s.profile = &cp
	return nil
}

func (s *fakeSession) Clear(_ context.Context, r session.Reason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	s.clears = append(s.clears, r)
	return nil
}

func unreachableErr() error {
	return &client.Error{Kind: client.KindUnreachable, Message: "Cannot connect to the server. Please check your internet connection."}
}

func unauthorizedErr() error {
	return &client.Error{Kind: client.KindUnauthorized, Status: 401, Message: "Your session has expired. Please log in again."}
}
