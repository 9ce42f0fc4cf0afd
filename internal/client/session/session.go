// Package session holds the client's authentication state: the bearer token
// and the cached user profile, backed by the local metadata store.
//
// A Session is created once at start-up with Open and injected into the API
// client. The application shell learns about forced logouts through
// Subscribe rather than by polling.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/models"
	"github.com/dmitrijs2005/agrisense/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agrisense/internal/common"
	"github.com/dmitrijs2005/agrisense/internal/cryptox"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned by Start for an empty token.
var ErrEmptyToken = errors.New("empty session token")

// Reason tells why a session ended.
type Reason int

const (
	ReasonLogout Reason = iota + 1
	ReasonUnauthorized
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonLogout:
		return "logout"
	case ReasonUnauthorized:
		return "unauthorized"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers when the session is cleared.
type Event struct {
	Reason Reason
}

type Option func(*Session)

// WithSealer seals stored values at rest.
func WithSealer(s cryptox.Sealer) Option {
	return func(x *Session) { x.sealer = s }
}

func WithLogger(l logging.Logger) Option {
	return func(x *Session) { x.log = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(x *Session) { x.now = now }
}

// Session is safe for concurrent use. Writers are serialized across the
// store and memory, so both always agree once a writer returns.
type Session struct {
	repo   metadata.Repository
	sealer cryptox.Sealer
	log    logging.Logger
	now    func() time.Time

	writeMu sync.Mutex

	mu        sync.RWMutex
	token     string
	profile   *models.User
	discarded Reason

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// Open loads the persisted session. An expired JWT is discarded together
// with its profile; a profile that cannot be decoded is treated as absent.
func Open(ctx context.Context, repo metadata.Repository, opts ...Option) (*Session, error) {
	s := &Session{
		repo: repo,
		log:  logging.Nop(),
		now:  time.Now,
		subs: make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(s)
	}

	token, err := s.load(ctx, common.TokenStorageKey)
	if err != nil {
		return nil, err
	}
	raw, err := s.load(ctx, common.ProfileStorageKey)
	if err != nil {
		return nil, err
	}

	s.token = string(token)
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn(ctx, "discarding unreadable cached profile", "error", err)
		} else {
			s.profile = &u
		}
	}

	if s.token != "" && expired(s.token, s.now()) {
		s.log.Info(ctx, "stored session token has expired")
		if err := s.Clear(ctx, ReasonExpired); err != nil {
			return nil, err
		}
		s.discarded = ReasonExpired
	}
	return s, nil
}

// Discarded reports whether Open dropped the stored session, and why.
// Open runs before anyone can subscribe, so callers check this once at
// start-up instead.
func (s *Session) Discarded() (Reason, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discarded, s.discarded != 0
}

// expired reports whether token is a JWT whose exp lies before now. Opaque
// tokens and tokens without exp never expire locally; the backend decides.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Profile returns a copy of the cached profile.
func (s *Session) Profile() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, false
	}
	u := *s.profile
	return &u, true
}

// Start moves the session to Authenticated. A nil user keeps whatever
// profile is cached.
func (s *Session) Start(ctx context.Context, token string, u *models.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	sealedToken, err := s.seal([]byte(token))
	if err != nil {
		return err
	}
	var sealedProfile []byte
	if u != nil {
		if sealedProfile, err = s.encodeProfile(u); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.repo.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, common.TokenStorageKey, sealedToken); err != nil {
			return err
		}
		if sealedProfile != nil {
			return r.Set(ctx, common.ProfileStorageKey, sealedProfile)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	if u != nil {
		cp := *u
		s.profile = &cp
	}
	s.mu.Unlock()
	return nil
}

// SetProfile refreshes the cached profile.
func (s *Session) SetProfile(ctx context.Context, u *models.User) error {
	if u == nil {
		return nil
	}
	sealed, err := s.encodeProfile(u)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Set(ctx, common.ProfileStorageKey, sealed); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	cp := *u
	s.mu.Lock()
	s.profile = &cp
	s.mu.Unlock()
	return nil
}

// Clear removes the token and the cached profile together and notifies
// subscribers. In-memory state is dropped even if the store fails.
func (s *Session) Clear(ctx context.Context, reason Reason) error {
	s.writeMu.Lock()
	err := s.repo.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Delete(ctx, common.TokenStorageKey); err != nil {
			return err
		}
		return r.Delete(ctx, common.ProfileStorageKey)
	})
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.notify(Event{Reason: reason})

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Subscribe registers fn for session-cleared events. Callbacks run
// synchronously on the clearing goroutine.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) notify(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Session) encodeProfile(u *models.User) ([]byte, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return s.seal(b)
}

func (s *Session) seal(b []byte) ([]byte, error) {
	if s.sealer == nil {
		return b, nil
	}
	out, err := s.sealer.Seal(b)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return out, nil
}

// load reads key and opens it. Values that fail to open (wrong passphrase,
// or written before sealing was enabled) are treated as absent.
func (s *Session) load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(b) == 0 || s.sealer == nil {
		return b, nil
	}
	out, err := s.sealer.Open(b)
	if err != nil {
		s.log.Warn(ctx, "cannot open stored value", "key", key, "error", err)
		return nil, nil
	}
	return out, nil
}
