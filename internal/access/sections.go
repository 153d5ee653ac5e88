package access

import "strings"

// Section is one of the two mutually exclusive navigation partitions.
type Section struct {
	Name      string
	Prefix    string
	Dashboard string
	// Roles may land in this section.
	Roles []string
}

// Public routes.
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
)

var (
	SectionCitizen = Section{
		Name:      "citizen",
		Prefix:    "/user",
		Dashboard: "/user/dashboard",
		Roles:     []string{RoleCitizen},
	}
	SectionProfessional = Section{
		Name:      "professional",
		Prefix:    "/professional",
		Dashboard: "/professional/dashboard",
		Roles:     []string{RoleArchitect, RoleEngineer},
	}
)

// Sections lists every protected section.
func Sections() []Section {
	return []Section{SectionCitizen, SectionProfessional}
}

// ProtectedPrefixes lists the path prefixes that require a session.
func ProtectedPrefixes() []string {
	return []string{SectionCitizen.Prefix, SectionProfessional.Prefix}
}

// PathRoleMap maps each protected prefix to the roles allowed to land there.
func PathRoleMap() map[string][]string {
	return map[string][]string{
		SectionCitizen.Prefix:      SectionCitizen.Roles,
		SectionProfessional.Prefix: SectionProfessional.Roles,
	}
}

// Contains reports whether path is the section prefix itself or lies below it.
// "/username" is not inside "/user".
func (s Section) Contains(path string) bool {
	return path == s.Prefix || strings.HasPrefix(path, s.Prefix+"/")
}

// SectionOf returns the protected section containing path.
func SectionOf(path string) (Section, bool) {
	for _, s := range Sections() {
		if s.Contains(path) {
			return s, true
		}
	}
	return Section{}, false
}

// IsProtected reports whether path requires a session.
func IsProtected(path string) bool {
	_, ok := SectionOf(path)
	return ok
}
