package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/services"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/dmitrijs2005/agrisense/internal/ndvi"
)

// ---- fake auth ----

type fakeAuth struct {
	mu      sync.Mutex
	authed  bool
	user    *models.User
	err     error
	pingErr error
	pings   int

	loginEmail, loginPassword string
	signup                    *models.SignupRequest
	update                    *models.ProfileUpdate
}

var _ services.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	f.loginEmail, f.loginPassword = email, password
	if f.err != nil {
		return nil, f.err
	}
	f.authed = true
	return f.user, nil
}

func (f *fakeAuth) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeAuth) Signup(_ context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	f.signup = &req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{AccessToken: "tok", User: f.user}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.authed = false
	return nil
}

func (f *fakeAuth) Me(context.Context) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, upd models.ProfileUpdate) (*models.User, error) {
	f.update = &upd
	u := *f.user
	if upd.Crop != nil {
		u.Crop = *upd.Crop
	}
	return &u, nil
}

func (f *fakeAuth) CurrentUser() (*models.User, bool) { return f.user, f.user != nil }
func (f *fakeAuth) IsAuthenticated() bool             { return f.authed }

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeAuth) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

// ---- fake fusion ----

type fakeFusion struct {
	dashboard    *models.Dashboard
	dashboardErr error
	cached       *services.CachedDashboard
	cachedErr    error
	advisory     *models.Advisory
	advisoryErr  error
	overview     *services.Overview
	overviewErr  error

	crops []string
}

var _ services.FusionService = (*fakeFusion)(nil)

func (f *fakeFusion) Dashboard(_ context.Context, crop string) (*models.Dashboard, error) {
	f.crops = append(f.crops, crop)
	return f.dashboard, f.dashboardErr
}

func (f *fakeFusion) Advisory(_ context.Context, crop string) (*models.Advisory, error) {
	f.crops = append(f.crops, crop)
	return f.advisory, f.advisoryErr
}

func (f *fakeFusion) PreferredCrop(context.Context) string { return "cotton" }

func (f *fakeFusion) Overview(_ context.Context, crop string) (*services.Overview, error) {
	f.crops = append(f.crops, crop)
	return f.overview, f.overviewErr
}

func (f *fakeFusion) CropHealth(d *models.Dashboard, crop string) ndvi.Summary {
	h, _ := d.Health(crop)
	return ndvi.Summarize(h.NDVI, h.NDVIChange, nil)
}

func (f *fakeFusion) CachedDashboard(context.Context, string) (*services.CachedDashboard, error) {
	return f.cached, f.cachedErr
}

// ---- fake community ----

type fakeCommunity struct {
	posts    []models.Post
	err      error
	likeErr  error
	like     *models.LikeResult
	comments []models.Comment
	top      []models.Contributor

	filter    models.PostFilter
	query     string
	created   *models.PostCreate
	updated   *models.PostUpdate
	deleted   []int64
	comment   string
	uploaded  string
	uploadLen int
	userID    int64
}

var _ services.CommunityService = (*fakeCommunity)(nil)

func (f *fakeCommunity) Posts(_ context.Context, flt models.PostFilter) ([]models.Post, error) {
	f.filter = flt
	return f.posts, f.err
}

func (f *fakeCommunity) Search(_ context.Context, q string, _, _ int) ([]models.Post, error) {
	f.query = q
	return f.posts, f.err
}

func (f *fakeCommunity) CreatePost(_ context.Context, p models.PostCreate) (*models.Post, error) {
	f.created = &p
	return &models.Post{ID: 42, Content: p.Content}, f.err
}

func (f *fakeCommunity) UpdatePost(_ context.Context, id int64, p models.PostUpdate) (*models.Post, error) {
	f.updated = &p
	return &models.Post{ID: id}, f.err
}

func (f *fakeCommunity) DeletePost(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeCommunity) UserPosts(_ context.Context, id int64) ([]models.Post, error) {
	f.userID = id
	return f.posts, f.err
}

func (f *fakeCommunity) Trending(context.Context) ([]models.Post, error) { return f.posts, f.err }

func (f *fakeCommunity) TopContributors(context.Context, int) ([]models.Contributor, error) {
	return f.top, f.err
}

func (f *fakeCommunity) Comments(context.Context, int64) ([]models.Comment, error) {
	return f.comments, f.err
}

func (f *fakeCommunity) AddComment(_ context.Context, _ int64, content string) (*models.Comment, error) {
	f.comment = content
	return &models.Comment{Content: content}, f.err
}

func (f *fakeCommunity) UploadImage(_ context.Context, filename string, data []byte) (string, error) {
	f.uploaded, f.uploadLen = filename, len(data)
	return "/uploads/x.png", f.err
}

func (f *fakeCommunity) ToggleLike(_ context.Context, id int64) (*models.LikeResult, error) {
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return f.like, nil
}

// ---- fake session ----

type fakeSubscriber struct {
	fns          []func(session.Event)
	unsubscribed bool
	discarded    session.Reason
}

func (s *fakeSubscriber) Discarded() (session.Reason, bool) {
	return s.discarded, s.discarded != 0
}

func (s *fakeSubscriber) Subscribe(fn func(session.Event)) func() {
	s.fns = append(s.fns, fn)
	return func() { s.unsubscribed = true }
}

func (s *fakeSubscriber) emit(r session.Reason) {
	for _, fn := range s.fns {
		fn(session.Event{Reason: r})
	}
}

// ---- app ----

type testApp struct {
	*App
	auth      *fakeAuth
	fusion    *fakeFusion
	community *fakeCommunity
	sub       *fakeSubscriber
	out       *bytes.Buffer
}

func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	ta := &testApp{
		auth:      &fakeAuth{authed: true, user: &models.User{ID: 7, Name: "Asha", Email: "asha@example.com", Crop: "cotton"}},
		fusion:    &fakeFusion{},
		community: &fakeCommunity{},
		sub:       &fakeSubscriber{},
		out:       &bytes.Buffer{},
	}
	in := strings.Join(input, "\n")
	if len(input) > 0 {
		in += "\n"
	}
	ta.App = newApp(Deps{
		Auth:      ta.auth,
		Fusion:    ta.fusion,
		Community: ta.community,
		Session:   ta.sub,
	}, time.Hour, bufio.NewReader(strings.NewReader(in)), ta.out)
	return ta
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
