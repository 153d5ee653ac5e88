// Package access holds the pure role and section rules shared by the edge gate,
// the page guard and the login flow: role normalisation, dashboard resolution,
// the protected section table and the post-login return-path contract.
package access

import "strings"

// Canonical role tokens.
const (
	RoleCitizen   = "CITIZEN"
	RoleArchitect = "ARCHITECT"
	RoleEngineer  = "ENGINEER"

	// roleLegacyUser is accepted from older accounts and means CITIZEN.
	roleLegacyUser = "USER"
)

// NormalizeRole upper-cases a role token and maps the legacy USER role to
// CITIZEN. The empty string normalises to the empty string.
func NormalizeRole(role string) string {
	upper := strings.ToUpper(role)
	if upper == roleLegacyUser {
		return RoleCitizen
	}
	return upper
}

// EffectiveRoles returns the role list a guard should reason about: nil when
// there is no user, the string entries of roles when any exist, and CITIZEN
// when the list is missing or empty.
func EffectiveRoles(hasUser bool, roles []string) []string {
	if !hasUser {
		return nil
	}
	if len(roles) > 0 {
		return roles
	}
	return []string{RoleCitizen}
}

// HasAllowedRole reports whether any of roles, once normalised, is in allowed.
// With no roles at all, only an allowed set containing CITIZEN matches.
func HasAllowedRole(roles []string, allowed []string) bool {
	allowedUpper := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedUpper[strings.ToUpper(a)] = struct{}{}
	}
	if len(roles) == 0 {
		_, ok := allowedUpper[RoleCitizen]
		return ok
	}
	for _, r := range roles {
		if _, ok := allowedUpper[NormalizeRole(r)]; ok {
			return true
		}
	}
	return false
}

// RolesFromAny adapts a raw decoded JSON value to a role list, keeping only
// string entries. Anything that is not an array yields nil.
func RolesFromAny(v any) []string {
	switch raw := v.(type) {
	case []string:
		return raw
	case []any:
		roles := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	default:
		return nil
	}
}
