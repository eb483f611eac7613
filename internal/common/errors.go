// Package common defines sentinel errors and small helpers shared by the
// dblook client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Service-level flow errors.
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionNotFound = errors.New("session not found")

	// Browsing errors.
	ErrNoTableSelected    = errors.New("no table selected")
	ErrTableNotFound      = errors.New("table not found")
	ErrAmbiguousTable     = errors.New("table name is ambiguous, qualify it with a schema")
	ErrCollectionNotFound = errors.New("collection not found")

	// Validation errors.
	ErrEmptyName        = errors.New("name must not be empty")
	ErrEmptyURL         = errors.New("database url must not be empty")
	ErrEmptyCredentials = errors.New("username and password must not be empty")
)
