// Package store holds the client's live state containers: the auth store
// (token, user, sessions, active session) and the UI-selection store.
//
// Each store is an explicit, injectable container. Every mutation swaps the
// state in one critical section, notifies subscribers, and writes the full
// state through to storage under the store's fixed key as
//
//	{"state": {...}, "version": 0}
//
// Stores never restore themselves: reading persisted state back is the job of
// the hydration coordinator, which calls Restore.
//
// No operation returns an error. Storage failures are logged and the
// in-memory state stays authoritative.
package store
