package common

import "errors"

var (
	// ErrorNotFound is returned by local repositories when a key is absent.
	ErrorNotFound = errors.New("not found")

	// ErrInvalidToken is returned for tokens that cannot be parsed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens whose exp claim lies in the past.
	ErrTokenExpired = errors.New("token expired")
)
