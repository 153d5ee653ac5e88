package access

import (
	"net/url"
	"strings"
)

// FromParam is the query parameter carrying the originally requested path.
const FromParam = "from"

// LoginRedirect builds the login URL that returns the user to path afterwards.
func LoginRedirect(path string) string {
	u := url.URL{Path: LoginPath}
	if path != "" {
		u.RawQuery = url.Values{FromParam: {path}}.Encode()
	}
	return u.String()
}

// SafeReturnPath validates a "from" value. Only local paths that start with a
// single "/" and lie under a protected prefix are returned.
func SafeReturnPath(from string) (string, bool) {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return "", false
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if !IsProtected(u.Path) {
		return "", false
	}
	return from, true
}

// AfterLogin picks where a freshly authenticated user goes: the validated
// "from" path when there is one, otherwise their dashboard.
func AfterLogin(from string, roles []string) string {
	if target, ok := SafeReturnPath(from); ok {
		return target
	}
	return DashboardPath(roles)
}
