// Package common contains shared constants and helpers used across the
// AgriSense client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the session token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates a request with client-side log lines.
	RequestIDHeaderName = "X-Request-ID"

	// TokenStorageKey is the local storage key of the session token.
	TokenStorageKey = "access_token"

	// ProfileStorageKey is the local storage key of the cached user profile.
	ProfileStorageKey = "user_data"

	// VaultSaltStorageKey holds the salt used to derive the at-rest sealing key.
	VaultSaltStorageKey = "vault_salt"

	// DefaultCrop is used whenever the user's preferred crop cannot be loaded.
	DefaultCrop = "cotton"
)
