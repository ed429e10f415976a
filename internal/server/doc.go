// Package server provides HTTP routing, middleware, and the login callback for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [BasicRouter] registers "METHOD /path" patterns on an [http.ServeMux], so a
// path served for GET answers other methods with 405. [Middleware] added first
// runs outermost.
//
// # Login Callback
//
// The backend finishes its OAuth flow by redirecting the browser to the client
// with token and refresh query parameters. [CallbackHandler] consumes that pair
// exactly once, sends it through a channel and redirects to "/" so the tokens
// do not linger in the address bar. Later hits never reprocess parameters.
//
// [CallbackServer] binds the loopback address, serves the handler behind the
// [Logging] and [Recover] middleware and shuts down once the login completes.
package server
