package handler

import (
	"net/http"

	"unibuild/internal/backend"
	"unibuild/internal/status"
)

const listLimit = 50

type permitSummary struct {
	Pending  int
	Approved int
	Rejected int
}

type professionalDashboard struct {
	VerificationStatus string
	Designs            int
	Permits            permitSummary
	Unavailable        bool
}

func (h *Handler) handleProfessionalDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok := token(r)
	data := professionalDashboard{VerificationStatus: "pending"}

	profile, err := h.portal.ProfessionalProfile(ctx, tok)
	switch {
	case err != nil:
		if h.backendFailed(w, r, "professional_profile", err) {
			return
		}
		data.Unavailable = true
	case profile != nil && profile.Status != "":
		data.VerificationStatus = profile.Status
	}

	designs, err := h.portal.DesignSubmissions(ctx, tok, listLimit)
	if err != nil {
		if h.backendFailed(w, r, "design_submissions", err) {
			return
		}
		data.Unavailable = true
	}
	data.Designs = len(designs)

	permits, err := h.portal.PermitRequests(ctx, tok, listLimit)
	if err != nil {
		if h.backendFailed(w, r, "permit_requests", err) {
			return
		}
		data.Unavailable = true
	}
	data.Permits = summarizePermits(permits)

	p := h.page(r, "Dashboard", data)
	if r.URL.Query().Get("registered") == "1" {
		p.Notice = msgRegistrationSubmitted
	}
	h.views.Render(w, r, http.StatusOK, "professional_dashboard", p)
}

func summarizePermits(permits []backend.PermitRequest) permitSummary {
	var s permitSummary
	for _, p := range permits {
		switch status.Lookup(p.Status).Tone {
		case status.ToneSuccess:
			s.Approved++
		case status.ToneDanger:
			s.Rejected++
		case status.ToneWarning:
			s.Pending++
		}
	}
	return s
}

func (h *Handler) handleProfessionalProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.portal.ProfessionalProfile(r.Context(), token(r))
	p := h.page(r, "Profile", nil)
	if err != nil {
		if h.backendFailed(w, r, "professional_profile", err) {
			return
		}
		p.Error = "Your professional profile could not be loaded right now."
	} else if profile != nil {
		p.Data = profile
	}
	h.views.Render(w, r, http.StatusOK, "profile", p)
}

func (h *Handler) handleProfessionalDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := h.portal.DesignSubmissions(r.Context(), token(r), listLimit)
	p := h.page(r, "Design submissions", designs)
	if err != nil {
		if h.backendFailed(w, r, "design_submissions", err) {
			return
		}
		p.Error = "Design submissions could not be loaded right now."
	}
	h.views.Render(w, r, http.StatusOK, "professional_design", p)
}

func (h *Handler) handleProfessionalPermits(w http.ResponseWriter, r *http.Request) {
	permits, err := h.portal.PermitRequests(r.Context(), token(r), listLimit)
	p := h.page(r, "Permit requests", permits)
	if err != nil {
		if h.backendFailed(w, r, "permit_requests", err) {
			return
		}
		p.Error = "Permit requests could not be loaded right now."
	}
	h.views.Render(w, r, http.StatusOK, "professional_permits", p)
}
