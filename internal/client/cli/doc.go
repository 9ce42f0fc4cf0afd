// Package cli provides the interactive AgriSense command-line client.
//
// It drives the application services from a REPL: account commands, the
// Fusion Engine dashboard and advisory, and the community feed. A background
// watcher pings the backend and shows online/offline mode in the prompt;
// when the backend is unreachable the dashboard falls back to the last
// stored snapshot.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
