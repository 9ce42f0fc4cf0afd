package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/client/services"
	"github.com/dmitrijs2005/agrisense/internal/client/session"
	"github.com/dmitrijs2005/agrisense/internal/logging"
	"github.com/microcosm-cc/bluemonday"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Subscriber delivers session-cleared events. Discarded covers a session
// dropped while loading, before any subscriber existed. *session.Session
// implements it.
type Subscriber interface {
	Subscribe(fn func(session.Event)) (unsubscribe func())
	Discarded() (session.Reason, bool)
}

// Deps are the collaborators an App drives.
type Deps struct {
	Auth      services.AuthService
	Fusion    services.FusionService
	Community services.CommunityService
	Session   Subscriber
	Logger    logging.Logger
}

type App struct {
	auth      services.AuthService
	fusion    services.FusionService
	community services.CommunityService
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer
	policy *bluemonday.Policy

	checkInterval time.Duration

	mu   sync.RWMutex
	mode Mode

	sess        Subscriber
	unsubscribe func()
}

// NewApp builds an App reading from stdin and writing to stdout.
func NewApp(d Deps, checkInterval time.Duration) *App {
	return newApp(d, checkInterval, bufio.NewReader(os.Stdin), os.Stdout)
}

func newApp(d Deps, checkInterval time.Duration, r *bufio.Reader, w io.Writer) *App {
	log := d.Logger
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		auth:          d.Auth,
		fusion:        d.Fusion,
		community:     d.Community,
		log:           log,
		reader:        r,
		out:           w,
		policy:        bluemonday.StrictPolicy(),
		checkInterval: checkInterval,
	}
	if d.Session != nil {
		a.sess = d.Session
		a.unsubscribe = d.Session.Subscribe(a.onSessionCleared)
	}
	return a
}

// onSessionCleared turns an Unauthorized signal into a re-login prompt.
func (a *App) onSessionCleared(ev session.Event) {
	switch ev.Reason {
	case session.ReasonUnauthorized:
		a.println("Your session has expired. Type 'login' to sign in again.")
	case session.ReasonExpired:
		a.println("Your saved session has expired. Type 'login' to sign in again.")
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

// getStatus renders the prompt status, e.g. "(Asha online)".
func (a *App) getStatus() string {
	var parts []string
	if u, ok := a.auth.CurrentUser(); ok && a.isLoggedIn() {
		parts = append(parts, u.DisplayName())
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// checkOnline pings the backend once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run starts the connectivity watcher and the REPL. It returns when the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
	}()

	a.println("Welcome to AgriSense CLI (type 'help' for commands)")
	if a.sess != nil {
		if reason, ok := a.sess.Discarded(); ok {
			a.onSessionCleared(session.Event{Reason: reason})
		}
	}

	if a.checkInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.StartOnlineStatusWatcher(ctx, a.checkInterval)
		}()
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
