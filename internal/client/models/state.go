package models

// AuthState is the root aggregate held by the auth store.
//
// Token == nil means logged out. ActiveSessionID, when set, is expected to
// reference an entry of Sessions, but that is the caller's responsibility:
// nothing in the store checks it.
type AuthState struct {
	Token           *string       `json:"token"`
	User            *User         `json:"user"`
	Sessions        []SessionMeta `json:"sessions"`
	ActiveSessionID *string       `json:"activeSessionId"`
}

// DefaultAuthState is the logged-out state: everything cleared, empty session list.
func DefaultAuthState() AuthState {
	return AuthState{Sessions: []SessionMeta{}}
}

// Clone returns a deep copy of s.
func (s AuthState) Clone() AuthState {
	return AuthState{
		Token:           cloneString(s.Token),
		User:            s.User.Clone(),
		Sessions:        CloneSessions(s.Sessions),
		ActiveSessionID: cloneString(s.ActiveSessionID),
	}
}

// IsAuthenticated reports whether a token is held.
func (s AuthState) IsAuthenticated() bool {
	return s.Token != nil && *s.Token != ""
}

// HasActiveSession reports whether a session is selected.
func (s AuthState) HasActiveSession() bool {
	return s.ActiveSessionID != nil
}

// FindSession looks a session up by id.
func (s AuthState) FindSession(id string) (SessionMeta, bool) {
	for _, m := range s.Sessions {
		if m.ID == id {
			return m, true
		}
	}
	return SessionMeta{}, false
}

// TableRef identifies a table inside the connected database.
type TableRef struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// String renders the reference as schema.name.
func (t TableRef) String() string {
	return t.Schema + "." + t.Name
}

// SelectionState is the UI-selection aggregate: what the user is looking at
// inside the active database. It has no invariant tying it to AuthState.
type SelectionState struct {
	SelectedCollectionID *string   `json:"selectedCollectionId"`
	SelectedTable        *TableRef `json:"selectedTable"`
}

// Clone returns a deep copy of s.
func (s SelectionState) Clone() SelectionState {
	c := SelectionState{SelectedCollectionID: cloneString(s.SelectedCollectionID)}
	if s.SelectedTable != nil {
		t := *s.SelectedTable
		c.SelectedTable = &t
	}
	return c
}
