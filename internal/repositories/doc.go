// Package repositories implements persistence for the client session and dashboard snapshots.
//
// Key Implementations:
//   - [TokenRepository] : session tokens in the SQLite client_state table, one row per key
//   - [TokenFile] : session tokens in a 0600 JSON file shaped like an oauth2 token
//   - [SnapshotRepository] : normalized dashboard collections, used to chart without a network round-trip
//
// Both token stores save and clear the access and refresh token together.
// [NewTokenStore] picks one from the storage.driver setting.
package repositories
