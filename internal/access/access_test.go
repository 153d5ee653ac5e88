package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"USER", RoleCitizen},
		{"user", RoleCitizen},
		{"User", RoleCitizen},
		{"citizen", RoleCitizen},
		{"CITIZEN", RoleCitizen},
		{"architect", RoleArchitect},
		{"Engineer", RoleEngineer},
		{"admin", "ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRole(tt.in))
		})
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  string
	}{
		{"nil roles", nil, "/user/dashboard"},
		{"empty roles", []string{}, "/user/dashboard"},
		{"legacy user", []string{"USER"}, "/user/dashboard"},
		{"citizen only", []string{"CITIZEN"}, "/user/dashboard"},
		{"architect lowercase", []string{"architect"}, "/professional/dashboard"},
		{"engineer", []string{"ENGINEER"}, "/professional/dashboard"},
		{"citizen and engineer", []string{"CITIZEN", "ENGINEER"}, "/professional/dashboard"},
		{"engineer and citizen", []string{"ENGINEER", "CITIZEN"}, "/professional/dashboard"},
		{"unknown role", []string{"ADMIN"}, "/user/dashboard"},
		{"empty strings", []string{"", ""}, "/user/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardPath(tt.roles))
		})
	}
}

func TestDashboardPathFromRawJSONValues(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"nil", nil, "/user/dashboard"},
		{"not an array", "ENGINEER", "/user/dashboard"},
		{"number junk", []any{1, 2.5, true, nil}, "/user/dashboard"},
		{"junk with professional", []any{42, "architect", map[string]any{}}, "/professional/dashboard"},
		{"object", map[string]any{"role": "ENGINEER"}, "/user/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DashboardPath(RolesFromAny(tt.raw)))
		})
	}
}

func TestRolesFromAnyKeepsOnlyStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, RolesFromAny([]any{"a", 1, "b", nil}))
	assert.Equal(t, []string{"x"}, RolesFromAny([]string{"x"}))
	assert.Nil(t, RolesFromAny(7))
}

func TestEffectiveRoles(t *testing.T) {
	assert.Nil(t, EffectiveRoles(false, []string{"ENGINEER"}))
	assert.Equal(t, []string{RoleCitizen}, EffectiveRoles(true, nil))
	assert.Equal(t, []string{"ARCHITECT"}, EffectiveRoles(true, []string{"ARCHITECT"}))
}

func TestHasAllowedRole(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		allowed []string
		want    bool
	}{
		{"no roles and citizen allowed", nil, []string{"CITIZEN"}, true},
		{"no roles and citizen not allowed", nil, []string{"ARCHITECT"}, false},
		{"legacy user matches citizen", []string{"user"}, []string{"CITIZEN"}, true},
		{"allowed set is case-insensitive", []string{"ENGINEER"}, []string{"engineer"}, true},
		{"mismatch", []string{"ENGINEER"}, []string{"CITIZEN"}, false},
		{"one of many", []string{"CITIZEN", "ARCHITECT"}, []string{"ARCHITECT"}, true},
		{"empty allowed", []string{"CITIZEN"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllowedRole(tt.roles, tt.allowed))
		})
	}
}

func TestSectionOfIsSegmentAware(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		matched bool
	}{
		{"/user", "citizen", true},
		{"/user/", "citizen", true},
		{"/user/dashboard", "citizen", true},
		{"/user/requests/42", "citizen", true},
		{"/professional", "professional", true},
		{"/professional/documents", "professional", true},
		{"/username", "", false},
		{"/professionals", "", false},
		{"/", "", false},
		{"/login", "", false},
		{"/api/session", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			section, ok := SectionOf(tt.path)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, section.Name)
			assert.Equal(t, tt.matched, IsProtected(tt.path))
		})
	}
}

func TestPathRoleMap(t *testing.T) {
	m := PathRoleMap()
	assert.Contains(t, m["/user"], RoleCitizen)
	assert.ElementsMatch(t, []string{RoleArchitect, RoleEngineer}, m["/professional"])
	assert.ElementsMatch(t, []string{"/user", "/professional"}, ProtectedPrefixes())
}

func TestInOwnSection(t *testing.T) {
	architect := []string{"ARCHITECT"}
	assert.True(t, InOwnSection(architect, "/professional/dashboard"))
	assert.True(t, InOwnSection(architect, "/professional/documents"))
	assert.False(t, InOwnSection(architect, "/professional"))
	assert.False(t, InOwnSection(architect, "/user/dashboard"))
	assert.True(t, InOwnSection(nil, "/user/profile"))
	assert.False(t, InOwnSection([]string{"ENGINEER"}, "/user/dashboard"))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login?from=%2Fuser%2Fdashboard", LoginRedirect("/user/dashboard"))
	assert.Equal(t, "/login", LoginRedirect(""))
}

func TestSafeReturnPath(t *testing.T) {
	tests := []struct {
		from string
		ok   bool
	}{
		{"/user/requests", true},
		{"/professional/permits?page=2", true},
		{"/user", true},
		{"", false},
		{"user/requests", false},
		{"/login", false},
		{"/", false},
		{"//evil.example/user", false},
		{`/\evil.example`, false},
		{"https://evil.example/user", false},
		{"/username", false},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got, ok := SafeReturnPath(tt.from)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.from, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestAfterLogin(t *testing.T) {
	assert.Equal(t, "/user/requests", AfterLogin("/user/requests", []string{"CITIZEN"}))
	assert.Equal(t, "/professional/dashboard", AfterLogin("https://evil.example", []string{"ENGINEER"}))
	assert.Equal(t, "/user/dashboard", AfterLogin("", nil))
}
