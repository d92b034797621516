package domain

// User represents a shopper or administrator account
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// ProfileUpdate carries the fields a user wants to change.
// Nil fields keep their current value.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// Apply returns a copy of u with the present fields overwritten
func (p ProfileUpdate) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return u
}

// Session is the current authentication context.
// Build it with NewSession or AnonymousSession so that User and
// Authenticated never disagree.
type Session struct {
	User          *User `json:"user"`
	Authenticated bool  `json:"authenticated"`
}

// NewSession returns an authenticated session for u
func NewSession(u User) Session {
	return Session{User: &u, Authenticated: true}
}

// AnonymousSession returns the empty session
func AnonymousSession() Session {
	return Session{}
}

// Normalize restores the User/Authenticated invariant on a session that was
// decoded from storage
func (s Session) Normalize() Session {
	if s.User == nil {
		return AnonymousSession()
	}
	return NewSession(*s.User)
}

// Clone returns a copy that shares no memory with s
func (s Session) Clone() Session {
	if s.User == nil {
		return AnonymousSession()
	}
	return NewSession(*s.User)
}
