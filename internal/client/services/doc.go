// Package services contains the application services of the AgriSense
// client: authentication, the Fusion Engine dashboard and advisories, and
// the community feed.
//
// Each service is a typed wrapper over client.Client. Errors returned by the
// backend keep their *client.Error classification through %w wrapping, so
// callers can still match them with errors.Is and render client.Message.
//
// Only two failures are swallowed on purpose: AuthService.Me falls back to
// the cached profile, and FusionService.PreferredCrop falls back to the
// default crop.
package services
