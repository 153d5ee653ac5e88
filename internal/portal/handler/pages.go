package handler

import (
	"net/http"

	"unibuild/internal/access"
	"unibuild/internal/guard"
	"unibuild/internal/portal/views"
	"unibuild/internal/session/models"
	dErrors "unibuild/pkg/domain-errors"
	"unibuild/pkg/platform/middleware/request"
)

var citizenNav = []views.NavLink{
	{Href: "/user/dashboard", Label: "Dashboard"},
	{Href: "/user/verify-land", Label: "Verify land"},
	{Href: "/user/requests", Label: "My requests"},
	{Href: "/user/certificates", Label: "Certificates"},
	{Href: "/user/profile", Label: "Profile"},
}

var professionalNav = []views.NavLink{
	{Href: "/professional/dashboard", Label: "Dashboard"},
	{Href: "/professional/register", Label: "Registration"},
	{Href: "/professional/documents", Label: "Documents"},
	{Href: "/professional/membership", Label: "Membership"},
	{Href: "/professional/design", Label: "Design submissions"},
	{Href: "/professional/permits", Label: "Permits"},
	{Href: "/professional/profile", Label: "Profile"},
}

// sessionState returns the state the guard established for this request.
func sessionState(r *http.Request) models.State {
	state, _ := guard.StateFrom(r.Context())
	return state
}

func navFor(path string) []views.NavLink {
	section, ok := access.SectionOf(path)
	if !ok {
		return nil
	}
	if section.Name == access.SectionProfessional.Name {
		return professionalNav
	}
	return citizenNav
}

// page builds the common page data for a guarded request.
func (h *Handler) page(r *http.Request, title string, data any) views.Page {
	return views.Page{
		Title: title,
		User:  sessionState(r).User,
		Nav:   navFor(r.URL.Path),
		Data:  data,
	}
}

// backendFailed handles an error from a page fetch. A rejected token ends the
// session; other failures are logged and the page renders without the data.
// It reports whether the response has been written.
func (h *Handler) backendFailed(w http.ResponseWriter, r *http.Request, what string, err error) bool {
	ctx := r.Context()
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		h.logger.InfoContext(ctx, "backend rejected session token, signing out",
			"request_id", request.GetRequestID(ctx),
			"fetch", what,
		)
		if lerr := h.sessions.Logout(ctx, h.storeFor(w, r)); lerr != nil {
			h.logger.WarnContext(ctx, "logout after rejected token failed", "error", lerr)
		}
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return true
	}
	if ctx.Err() != nil {
		return true
	}
	h.logger.WarnContext(ctx, "backend fetch failed",
		"request_id", request.GetRequestID(ctx),
		"fetch", what,
		"error", err,
	)
	return false
}

func (h *Handler) sectionPage(title, description string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "section_page", h.page(r, title, description))
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, title string) {
	p := h.page(r, title, nil)
	p.Error = "We could not find that item."
	h.views.Render(w, r, http.StatusNotFound, "section_page", p)
}

func token(r *http.Request) string {
	return sessionState(r).Token
}
