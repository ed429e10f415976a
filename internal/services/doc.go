// Package services implements the authenticated fetch client for the listening summary backend.
//
// # Transport
//
// [APIService] performs raw HTTP requests and returns an [APIResponse] for any
// status. Transport failures wrap [shared.ErrNetworkFailure]. An optional rate
// limiter throttles outbound requests.
//
// # Client
//
// [Client] owns the session (access and refresh token) and attaches the access
// token as a bearer header through [oauth2.Token.SetAuthHeader]. The wrapped
// endpoint also receives the refresh token as a query parameter.
//
// On a 401 the client refreshes the access token and retries the request once.
// A second 401 is terminal. Refreshes are serialized through a
// [singleflight.Group]: callers that hit a 401 while a refresh is running wait
// for it, and callers whose token has already been replaced skip it.
//
// A failed refresh ends the session in memory and in the [models.TokenStore]
// and runs the OnExpired hook.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrUnauthorized] : a retried request was still rejected
//   - [shared.ErrRequestFailed] : any other non-2xx status, see [RequestError]
//   - [shared.ErrNetworkFailure] : no response was received
//   - [shared.ErrRefreshFailed] : the session has ended, login required
//   - [shared.ErrSessionClosed] : the response arrived after logout and was discarded
package services
