package hydration

import "fmt"

// Status classifies how hydration of one store ended.
type Status int

const (
	// StatusRestored means persisted fields were applied to the store.
	StatusRestored Status = iota
	// StatusAbsent means nothing was stored under the key.
	StatusAbsent
	// StatusNoToken means an auth record without a token was ignored.
	StatusNoToken
	// StatusCorrupt means the record could not be decoded.
	StatusCorrupt
	// StatusStorageError means reading the key failed.
	StatusStorageError
	// StatusUnavailable means there is no storage at all.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusRestored:
		return "restored"
	case StatusAbsent:
		return "absent"
	case StatusNoToken:
		return "no-token"
	case StatusCorrupt:
		return "corrupt"
	case StatusStorageError:
		return "storage-error"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of hydrating one store.
type Outcome struct {
	Store  string
	Key    string
	Status Status
	Err    error
}

// Warm reports whether persisted data was applied.
func (o Outcome) Warm() bool {
	return o.Status == StatusRestored
}

// Report collects the per-store outcomes of a finished hydration.
type Report struct {
	Auth      Outcome
	Selection Outcome
}

// Warm reports whether any store was restored.
func (r Report) Warm() bool {
	return r.Auth.Warm() || r.Selection.Warm()
}
