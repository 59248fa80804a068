package models

// SessionState is the SessionStore state machine.
type SessionState string

const (
	StateAnonymous             SessionState = "anonymous"
	StateInitializing          SessionState = "initializing"
	StateAuthenticatedNoRole   SessionState = "authenticated-no-role"
	StateAuthenticatedWithRole SessionState = "authenticated-with-role"
)

// SyncStatus reports whether a locally applied profile change reached the
// remote service.
type SyncStatus string

const (
	SyncNone    SyncStatus = ""
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// Session is the authenticated actor. A non-empty Token implies a non-nil User.
type Session struct {
	User        *User
	Role        Role
	Token       string
	Initialized bool
	Loading     bool
	ProfileSync SyncStatus
}

// State derives the state machine position from the fields.
func (s Session) State() SessionState {
	switch {
	case s.Loading && !s.Initialized:
		return StateInitializing
	case s.Token == "" || s.User == nil:
		return StateAnonymous
	case s.Role.Valid():
		return StateAuthenticatedWithRole
	default:
		return StateAuthenticatedNoRole
	}
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Clone returns a copy whose User pointer is not shared with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
