package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"unibuild/internal/access"
)

// User is the identity record returned by the UniBuild API.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// UnmarshalJSON tolerates numeric ids and role lists carrying non-string
// entries; such entries are dropped instead of failing the decode.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    any    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Roles any    `json:"roles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := idString(raw.ID)
	if err != nil {
		return err
	}
	*u = User{
		ID:    id,
		Email: raw.Email,
		Name:  raw.Name,
		Roles: access.RolesFromAny(raw.Roles),
	}
	return nil
}

func idString(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("user id: unsupported type %T", v)
	}
}

// EffectiveRoles returns the user's roles, defaulting to CITIZEN when none
// are set.
func (u *User) EffectiveRoles() []string {
	if u == nil {
		return nil
	}
	return access.EffectiveRoles(true, u.Roles)
}

// Dashboard is the user's resolved landing page.
func (u *User) Dashboard() string {
	return access.DashboardPath(u.EffectiveRoles())
}

// DisplayName prefers the name and falls back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// StateKind enumerates the session states a page guard reasons about.
type StateKind int

const (
	StateLoading StateKind = iota
	StateUnauthenticated
	StateAuthenticated
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the per-request view of the session.
type State struct {
	Kind  StateKind
	Token string
	User  *User
}

// Loading is the state while re-validation is still in flight.
func Loading() State { return State{Kind: StateLoading} }

// Unauthenticated is the state without a valid session.
func Unauthenticated() State { return State{Kind: StateUnauthenticated} }

// Authenticated is the state for a valid session.
func Authenticated(token string, user *User) State {
	return State{Kind: StateAuthenticated, Token: token, User: user}
}

// IsAuthenticated reports whether the state carries a user.
func (s State) IsAuthenticated() bool {
	return s.Kind == StateAuthenticated && s.User != nil
}
