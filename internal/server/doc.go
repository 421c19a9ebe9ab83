// Package server provides the local HTTP listener that receives the Spotify authorization redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a gorilla/mux router internally with method matching.
//
// # Callback Handler
//
// [CallbackHandler] serves the redirect URI path. It does not exchange the code itself: it forwards the full
// callback URL over a channel, and the waiting caller hands it to the auth session as its current location.
//
// Only one callback can be pending at a time. A second redirect arriving before the first is consumed is
// rejected with 409 Conflict.
//
// # Lifecycle
//
// [Server] binds its listener synchronously in [Server.Start] so that a port conflict is reported before the
// browser is sent to the authorization page, then serves in the background until [Server.Shutdown].
package server
