// Package guard enforces the role/section check the edge gate cannot make,
// once the session has been established for a page view.
package guard

import (
	"sync/atomic"

	"unibuild/internal/access"
	"unibuild/internal/session/models"
)

const (
	DefaultLoadingMessage = "Loading…"
	RedirectingMessage    = "Redirecting to your dashboard…"
)

// Navigator performs client navigation.
type Navigator interface {
	Navigate(target string)
}

// Outcome is what a render decided.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeLogin
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeLogin:
		return "login"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// View is the result of one render: either children or a placeholder message.
type View struct {
	Outcome Outcome
	Message string
	Target  string
}

// Mount is one guarded layout instance. Renders are cheap and may repeat;
// the dashboard redirect fires at most once per mount.
type Mount struct {
	allowed     []string
	placeholder string
	nav         Navigator
	redirected  atomic.Bool
}

// NewMount creates a mount for a layout declaring allowed roles. An empty
// placeholder selects DefaultLoadingMessage.
func NewMount(allowed []string, placeholder string, nav Navigator) *Mount {
	if placeholder == "" {
		placeholder = DefaultLoadingMessage
	}
	return &Mount{allowed: allowed, placeholder: placeholder, nav: nav}
}

// Render evaluates state for path.
func (m *Mount) Render(state models.State, path string) View {
	switch {
	case state.Kind == models.StateLoading:
		return View{Outcome: OutcomeLoading, Message: m.placeholder}
	case !state.IsAuthenticated():
		m.nav.Navigate(access.LoginPath)
		return View{Outcome: OutcomeLogin, Message: m.placeholder, Target: access.LoginPath}
	}

	roles := state.User.EffectiveRoles()
	if access.HasAllowedRole(roles, m.allowed) || access.InOwnSection(roles, path) {
		return View{Outcome: OutcomeRender}
	}

	target := access.DashboardPath(roles)
	if m.redirected.CompareAndSwap(false, true) {
		m.nav.Navigate(target)
	}
	return View{Outcome: OutcomeRedirect, Message: RedirectingMessage, Target: target}
}
