package access

import "strings"

// DashboardPath resolves a role list to the user's landing page. Professional
// roles win when both professional and citizen roles are present. The result
// is always one of the two section dashboards.
func DashboardPath(roles []string) string {
	return ResolveSection(roles).Dashboard
}

// ResolveSection is DashboardPath returning the whole section.
func ResolveSection(roles []string) Section {
	for _, r := range roles {
		switch NormalizeRole(r) {
		case RoleArchitect, RoleEngineer:
			return SectionProfessional
		}
	}
	return SectionCitizen
}

// InOwnSection reports whether path is the user's dashboard or lies inside the
// section their roles resolve to.
func InOwnSection(roles []string, path string) bool {
	section := ResolveSection(roles)
	return path == section.Dashboard || strings.HasPrefix(path, section.Prefix+"/")
}
