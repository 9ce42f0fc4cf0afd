package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/goccy/go-json"
)

const (
	pathLogin      = "/auth/login"
	pathAdminLogin = "/auth/admin-login"
	pathSignup     = "/auth/signup"
	pathMe         = "/auth/me"
	pathProfile    = "/auth/profile"
)

// ErrNoProfileChanges is returned by UpdateProfile for an empty update.
var ErrNoProfileChanges = errors.New("nothing to update")

// Session is the part of *session.Session the services rely on.
type Session interface {
	IsAuthenticated() bool
	Profile() (*models.User, bool)
	Start(ctx context.Context, token string, u *models.User) error
	SetProfile(ctx context.Context, u *models.User) error
	Clear(ctx context.Context, reason session.Reason) error
}

// AuthService defines the account operations.
//
// Contract:
//   - Login/AdminLogin/Signup: start a session when the backend returns a token.
//   - Logout: end the session locally.
//   - Me: live profile, falling back to the cached one unless the session
//     was rejected.
//   - UpdateProfile: patch the profile and refresh the cache.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	AdminLogin(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	CurrentUser() (*models.User, bool)
	IsAuthenticated() bool
	Ping(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session Session
	log     logging.Logger
}

func NewAuthService(c client.Client, s Session, log logging.Logger) AuthService {
	return &authService{client: c, session: s, log: log}
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	return a.login(ctx, pathLogin, email, password)
}

func (a *authService) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	return a.login(ctx, pathAdminLogin, email, password)
}

func (a *authService) login(ctx context.Context, path, email, password string) (*models.User, error) {
	resp, err := a.authenticate(ctx, path, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: %w", client.NewClientError(errors.New("server returned no access token")))
	}
	if err := a.session.Start(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.User != nil {
		return resp.User, nil
	}
	// The login response may carry only the token.
	u, err := a.Me(ctx)
	if err != nil {
		a.log.Warn(ctx, "logged in but profile is unavailable", "error", err)
		return &models.User{Email: email}, nil
	}
	return u, nil
}

func (a *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	resp, err := a.authenticate(ctx, pathSignup, req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if resp.AccessToken != "" {
		if err := a.session.Start(ctx, resp.AccessToken, resp.User); err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
	}
	return resp, nil
}

// authenticate posts body to path and accepts either {access_token, user}
// or a bare user object (signup without auto-login).
func (a *authService) authenticate(ctx context.Context, path string, body any) (*models.AuthResponse, error) {
	var raw json.RawMessage
	if err := a.client.Invoke(ctx, http.MethodPost, path, body, &raw); err != nil {
		return nil, err
	}
	resp := &models.AuthResponse{}
	if len(raw) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, client.NewClientError(fmt.Errorf("decode auth response: %w", err))
	}
	if resp.User == nil {
		var u models.User
		if json.Unmarshal(raw, &u) == nil && u.Email != "" {
			resp.User = &u
		}
	}
	return resp, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Clear(ctx, session.ReasonLogout)
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	err := a.client.Invoke(ctx, http.MethodGet, pathMe, nil, &u)
	if err == nil {
		if err := a.session.SetProfile(ctx, &u); err != nil {
			a.log.Warn(ctx, "cannot cache profile", "error", err)
		}
		return &u, nil
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if cached, ok := a.session.Profile(); ok {
		a.log.Warn(ctx, "using cached profile", "error", err)
		return cached, nil
	}
	return nil, fmt.Errorf("get profile: %w", err)
}

func (a *authService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, client.NewClientError(ErrNoProfileChanges)
	}
	var u models.User
	if err := a.client.Invoke(ctx, http.MethodPatch, pathProfile, upd, &u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := a.session.SetProfile(ctx, &u); err != nil {
		a.log.Warn(ctx, "cannot cache profile", "error", err)
	}
	return &u, nil
}

func (a *authService) CurrentUser() (*models.User, bool) {
	return a.session.Profile()
}

func (a *authService) IsAuthenticated() bool {
	return a.client.IsAuthenticated()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
