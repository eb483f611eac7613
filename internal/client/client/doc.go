// Package client talks to the dblook backend over HTTP/JSON.
//
// # Overview
//
// Client is the transport-agnostic API contract used by the services layer:
// account calls (Register, Login, Me, Logout), session management
// (ListSessions, CreateSession, DeleteSession, ConnectSession,
// DisconnectSession) and a Ping health check. HTTPClient implements it.
//
// Login is an OAuth2 resource-owner password grant against /auth/login.
// Authenticated calls go through an oauth2.Transport whose token source reads
// the current token from a TokenSource (the auth store) on every request; the
// client keeps no credentials of its own. Every request carries an
// X-Request-ID header.
//
// # Error Handling
//
// Responses are mapped to sentinel errors that callers match with errors.Is:
// ErrUnauthorized (401, 403, rejected credentials), ErrNotFound (404),
// ErrUnavailable (transport failure, 502, 503, 504) and ErrNoToken (an
// authenticated call without a token). Anything else is an *APIError carrying
// the server's detail message.
package client
