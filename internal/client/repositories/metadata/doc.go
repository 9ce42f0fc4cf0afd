// Package metadata is the local key/value store behind the session: the
// bearer token, the cached profile, and the vault salt each live under a
// fixed key of the metadata table.
//
// SQLiteRepository works over a dbx.DBTX, so the same code runs against a
// *sql.DB or inside a transaction opened by Update.
package metadata
