// Package models defines client-side data models used by the dblook CLI.
package models

// User is the profile of the signed-in account as returned by /auth/me.
// It is only ever replaced as a whole from a server response.
type User struct {
	// ID is the server-assigned user identifier (uuid).
	ID string `json:"id"`

	// Username is the lower-cased login name.
	Username string `json:"username"`

	// CreatedAt is the account creation timestamp, kept verbatim as sent by the server.
	CreatedAt string `json:"created_at"`

	// LastLoginAt is nil until the first successful login.
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// Clone returns a deep copy of u. A nil receiver yields nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.LastLoginAt = cloneString(u.LastLoginAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s. It is a convenience for optional fields.
func StringPtr(s string) *string {
	return &s
}
