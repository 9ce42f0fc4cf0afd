// Package client is the single choke point for requests to the AgriSense
// backend.
//
// # Overview
//
// HTTPClient (see Client) resolves paths against the configured base URL,
// attaches the session's bearer token to every endpoint except the public
// auth endpoints, and turns every failure into an *Error with a stable Kind
// and a user-facing message:
//
//   - 401 on a protected path clears the session and yields KindUnauthorized;
//     401 on login/signup/admin-login yields KindInvalidCredentials.
//   - Other statuses map to KindInvalidInput, KindForbidden, KindNotFound,
//     KindConflict, KindServerError or KindUnknownStatus.
//   - No response at all (DNS, refused, timeout, open breaker) is
//     KindUnreachable.
//   - Anything that failed before the request left (validation, encoding,
//     bad URL) is KindClientError.
//
// The classifier never retries.
//
// # Error Handling
//
// *Error matches the sentinel errors through errors.Is, so callers can write
//
//	if errors.Is(err, client.ErrUnauthorized) { ... }
//
// and use Message(err) to obtain the text to show to the user.
//
// The package also bootstraps the local SQLite store (InitDatabase,
// RunMigrations) holding the session and the offline dashboard snapshots.
package client
