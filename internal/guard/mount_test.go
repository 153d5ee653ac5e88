package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/internal/access"
	"unibuild/internal/session/models"
	"unibuild/pkg/testutil"
)

type fakeNavigator struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, target)
}

func (n *fakeNavigator) targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func authed(roles ...string) models.State {
	return models.Authenticated("tok", &models.User{ID: "u1", Email: "a@b.c", Roles: roles})
}

func TestMountRender(t *testing.T) {
	citizen := access.SectionCitizen.Roles
	professional := access.SectionProfessional.Roles

	tests := []struct {
		name    string
		allowed []string
		state   models.State
		path    string
		outcome Outcome
		target  string
	}{
		{"citizen in citizen section", citizen, authed("CITIZEN"), "/user/dashboard", OutcomeRender, ""},
		{"legacy user role in citizen section", citizen, authed("USER"), "/user/requests", OutcomeRender, ""},
		{"no roles default to citizen", citizen, authed(), "/user/profile", OutcomeRender, ""},
		{"architect in professional section", professional, authed("ARCHITECT"), "/professional/design", OutcomeRender, ""},
		{"lowercase engineer in professional section", professional, authed("engineer"), "/professional/permits", OutcomeRender, ""},
		{"engineer in citizen section", citizen, authed("ENGINEER"), "/user/dashboard", OutcomeRedirect, "/professional/dashboard"},
		{"citizen in professional section", professional, authed("CITIZEN"), "/professional/dashboard", OutcomeRedirect, "/user/dashboard"},
		{"architect on narrower professional page", []string{"ENGINEER"}, authed("ARCHITECT"), "/professional/documents", OutcomeRender, ""},
		{"architect on narrower page outside own section", []string{"CITIZEN"}, authed("ARCHITECT"), "/user/dashboard", OutcomeRedirect, "/professional/dashboard"},
		{"unauthenticated", citizen, models.Unauthenticated(), "/user/dashboard", OutcomeLogin, "/login"},
		{"loading", professional, models.Loading(), "/professional/dashboard", OutcomeLoading, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &fakeNavigator{}
			view := NewMount(tt.allowed, "", nav).Render(tt.state, tt.path)

			assert.Equal(t, tt.outcome, view.Outcome)
			assert.Equal(t, tt.target, view.Target)
			if tt.target == "" {
				assert.Empty(t, nav.targets())
			} else {
				assert.Equal(t, []string{tt.target}, nav.targets())
			}
		})
	}
}

func TestMountMessages(t *testing.T) {
	nav := &fakeNavigator{}

	assert.Equal(t, DefaultLoadingMessage, NewMount(nil, "", nav).Render(models.Loading(), "/user").Message)
	assert.Equal(t, "Checking session", NewMount(nil, "Checking session", nav).Render(models.Loading(), "/user").Message)
	assert.Equal(t, RedirectingMessage,
		NewMount(access.SectionCitizen.Roles, "", nav).Render(authed("ENGINEER"), "/user/dashboard").Message)
	assert.Empty(t, NewMount(access.SectionCitizen.Roles, "", nav).Render(authed("CITIZEN"), "/user").Message)
}

func TestMountDashboardRedirectIsLatched(t *testing.T) {
	testutil.Given(t, "an engineer mounted on the citizen section", func(t *testing.T) {
		nav := &fakeNavigator{}
		m := NewMount(access.SectionCitizen.Roles, "", nav)

		testutil.When(t, "the layout re-renders many times", func(t *testing.T) {
			for i := 0; i < 10; i++ {
				view := m.Render(authed("ENGINEER"), "/user/dashboard")
				require.Equal(t, OutcomeRedirect, view.Outcome)
				require.Equal(t, RedirectingMessage, view.Message)
			}

			testutil.Then(t, "navigation is requested exactly once", func(t *testing.T) {
				assert.Equal(t, []string{"/professional/dashboard"}, nav.targets())
			})
		})
	})
}

func TestMountLatchHoldsUnderConcurrentRenders(t *testing.T) {
	nav := &fakeNavigator{}
	m := NewMount(access.SectionProfessional.Roles, "", nav)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Render(authed("CITIZEN"), "/professional/dashboard")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"/user/dashboard"}, nav.targets())
}

func TestMountLoginRedirectRepeatsEachRender(t *testing.T) {
	nav := &fakeNavigator{}
	m := NewMount(access.SectionCitizen.Roles, "", nav)

	m.Render(models.Unauthenticated(), "/user/dashboard")
	m.Render(models.Unauthenticated(), "/user/dashboard")

	assert.Equal(t, []string{"/login", "/login"}, nav.targets())
}

func TestMountLoadingThenAuthenticated(t *testing.T) {
	nav := &fakeNavigator{}
	m := NewMount(access.SectionProfessional.Roles, "Loading…", nav)

	first := m.Render(models.Loading(), "/professional/dashboard")
	second := m.Render(authed("ARCHITECT"), "/professional/dashboard")

	assert.Equal(t, OutcomeLoading, first.Outcome)
	assert.Equal(t, OutcomeRender, second.Outcome)
	assert.Empty(t, nav.targets())
}
