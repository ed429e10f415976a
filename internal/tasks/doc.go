// Package tasks loads the listening summary dashboard with real-time progress reporting.
//
// # Core Operation
//
// [Loader.LoadAll] fires one authenticated request per section (top tracks,
// top artists, top genres and the wrapped summary) on its own goroutine and
// waits for all four to settle. There is no ordering between legs.
//
// Failures are contained per section: the failing section is emptied and its
// error is recorded in [LoadResult.Failed] and on the [Dashboard]. Only a failed
// token refresh is reported as an error, because it ends the session.
//
// # Progress Reporting
//
// Updates use non-blocking channel sends. A load emits [LoadStarted], one update per settled leg, and a single
// [LoadFinished] once every leg is done.
//
// # Dashboard State
//
// [Dashboard] owns the normalized collections. Loads are tagged with a
// generation; [Dashboard.Reset] (logout) invalidates a load in progress so its
// late results are dropped instead of repopulating a cleared dashboard.
// Chart views are derived from the cached collections with [Dashboard.Chart]
// and never trigger a request.
package tasks
