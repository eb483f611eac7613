// Package hydration restores persisted client state into the live stores
// exactly once per process, and gates the application on that restore.
//
// A Coordinator starts in PhasePending and moves to PhaseReady once Hydrate
// has read both persisted records (auth and UI selection) and applied what it
// could. The move happens whatever the records contain: a missing, unreadable
// or corrupt record only means that store keeps its defaults. Nothing is
// reported to the user; each store's outcome is logged and kept in the Report.
//
// Gate is the composition-root guard: it shows a loading indicator, hydrates,
// and only then runs the application, once.
package hydration
