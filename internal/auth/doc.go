// package auth implements the Spotify Authorization Code flow with PKCE.
//
// A [Session] is the single entry point: [Session.GetAccessToken] returns a
// cached token, exchanges an authorization code found on the current
// [Location], or starts a new authorization by sending the user to the
// provider. Tokens are held in memory only and expire on a timer; there is
// no refresh-token grant, so an expired token sends the next caller back
// through the flow.
//
// The verifier generated for each attempt is persisted through a
// [VerifierStore] so the flow can resume after the process that started it
// exits.
package auth
