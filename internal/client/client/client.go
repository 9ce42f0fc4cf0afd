package client

import (
	"context"

	"github.com/dmitrijs2005/agrisense/internal/client/session"
)

// Client is the transport contract the application services are written
// against. HTTPClient is the production implementation.
type Client interface {
	// Invoke sends body (JSON-encoded, may be nil) and decodes a 2xx
	// response into out (may be nil). Failures are *Error values.
	Invoke(ctx context.Context, method, path string, body, out any) error
	// Upload sends data as a single multipart file under field.
	Upload(ctx context.Context, path, field, filename string, data []byte, out any) error
	// IsAuthenticated reports whether a session token is present. It never
	// touches the network.
	IsAuthenticated() bool
	// Ping checks that the backend answers.
	Ping(ctx context.Context) error
}

// Session is the authentication state HTTPClient reads the token from and
// clears on a protected 401. *session.Session implements it.
type Session interface {
	Token() string
	Clear(ctx context.Context, reason session.Reason) error
}
