package domain

import "time"

// SessionEntry is a previously validated admin session held client-side in
// the admin_session cookie. It is trusted only until ExpiresAt.
type SessionEntry struct {
	ID        string
	UserID    string
	AdminID   string
	Role      Role
	ExpiresAt time.Time
}

// Fresh reports whether the entry is still inside its trust window at now.
func (s SessionEntry) Fresh(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.Before(s.ExpiresAt)
}
