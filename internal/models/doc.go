// Package models defines the data model shared by the fetch client, the dashboard state and persistence.
//
// The package contains three categories of types:
//
// 1. Session state: the credential pair identifying the user to the backend
//   - [Session] : access and refresh token, empty strings meaning absent
//   - [TokenStore] : persistence contract implemented by the repositories package
//
// 2. Summary records decoded from backend responses
//   - [TrackSummary], [ArtistSummary], [GenreEntry], [WrappedSummary]
//
// 3. Response normalization
//   - [RawResponse] : tagged union over a response body (sequence, envelope or malformed)
//   - [NormalizeList] : collapses every shape to a plain list of items
//
// Backend responses are not contractually shaped. Everything entering the dashboard passes
// through [ParseRaw] exactly once; malformed input degrades to an empty collection instead of an error.
package models
