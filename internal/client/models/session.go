package models

// SessionMeta describes one named backend database connection owned by the
// signed-in user. It is metadata only: the connection string never leaves the server.
type SessionMeta struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CreatedAt     string  `json:"created_at"`
	LastUsedAt    string  `json:"last_used_at"`
	LastDBName    *string `json:"last_db_name,omitempty"`
	LastDBVersion *string `json:"last_db_version,omitempty"`
}

// Clone returns a deep copy of s.
func (s SessionMeta) Clone() SessionMeta {
	s.LastDBName = cloneString(s.LastDBName)
	s.LastDBVersion = cloneString(s.LastDBVersion)
	return s
}

// CloneSessions deep-copies a session list. The result is never nil so that
// it serializes as an empty JSON array.
func CloneSessions(in []SessionMeta) []SessionMeta {
	out := make([]SessionMeta, 0, len(in))
	for _, s := range in {
		out = append(out, s.Clone())
	}
	return out
}

// DatabaseInfo is what the backend reports after connecting a session.
type DatabaseInfo struct {
	Connected bool   `json:"connected"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	User      string `json:"user,omitempty"`
}
