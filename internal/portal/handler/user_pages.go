package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unibuild/internal/backend"
	"unibuild/internal/status"
	dErrors "unibuild/pkg/domain-errors"
)

const (
	recentRequests      = 5
	certificatePageSize = 50
	maxCertificatePages = 20
)

type userDashboard struct {
	Total        int
	Pending      int
	Certificates int
	Recent       []backend.LandVerification
	Unavailable  bool
}

type requestsPage struct {
	backend.LandVerificationPage
	Prev int
	Next int
}

func (h *Handler) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := h.portal.LandVerifications(r.Context(), token(r), backend.LandVerificationQuery{Limit: 50})
	data := userDashboard{}
	if err != nil {
		if h.backendFailed(w, r, "land_verifications", err) {
			return
		}
		data.Unavailable = true
	} else {
		data.Total = page.Total
		if data.Total == 0 {
			data.Total = len(page.Verifications)
		}
		for _, v := range page.Verifications {
			if status.Lookup(v.Status).Tone == status.ToneWarning {
				data.Pending++
			}
			if v.CertificateID != "" {
				data.Certificates++
			}
		}
		data.Recent = page.Verifications
		if len(data.Recent) > recentRequests {
			data.Recent = data.Recent[:recentRequests]
		}
	}
	h.views.Render(w, r, http.StatusOK, "user_dashboard", h.page(r, "Dashboard", data))
}

func (h *Handler) handleUserRequests(w http.ResponseWriter, r *http.Request) {
	q := backend.LandVerificationQuery{
		Page:   positiveInt(r.URL.Query().Get("page"), 1),
		Limit:  20,
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	page, err := h.portal.LandVerifications(r.Context(), token(r), q)
	if err != nil {
		if h.backendFailed(w, r, "land_verifications", err) {
			return
		}
		p := h.page(r, "My requests", nil)
		p.Error = "Requests could not be loaded right now."
		h.views.Render(w, r, http.StatusOK, "user_requests", p)
		return
	}
	if page.Page < 1 {
		page.Page = q.Page
	}
	if page.TotalPages < page.Page {
		page.TotalPages = page.Page
	}
	data := requestsPage{LandVerificationPage: page, Prev: page.Page - 1, Next: page.Page + 1}
	p := h.page(r, "My requests", data)
	if r.URL.Query().Get("submitted") == "1" {
		p.Notice = msgRequestSubmitted
	}
	h.views.Render(w, r, http.StatusOK, "user_requests", p)
}

func (h *Handler) handleUserRequest(w http.ResponseWriter, r *http.Request) {
	h.renderVerification(w, r, "Request", false)
}

func (h *Handler) handleUserCertificates(w http.ResponseWriter, r *http.Request) {
	q := backend.LandVerificationQuery{Page: 1, Limit: certificatePageSize, Type: "lpc", Status: "approved"}
	var issued []backend.LandVerification
	for {
		page, err := h.portal.LandVerifications(r.Context(), token(r), q)
		if err != nil {
			if h.backendFailed(w, r, "land_verifications", err) {
				return
			}
			p := h.page(r, "Certificates", issued)
			p.Error = "Certificates could not be loaded right now."
			h.views.Render(w, r, http.StatusOK, "user_certificates", p)
			return
		}
		for _, v := range page.Verifications {
			if v.CertificateID != "" {
				issued = append(issued, v)
			}
		}
		if len(page.Verifications) == 0 || q.Page >= page.TotalPages || q.Page >= maxCertificatePages {
			break
		}
		q.Page++
	}
	h.views.Render(w, r, http.StatusOK, "user_certificates", h.page(r, "Certificates", issued))
}

func (h *Handler) handleUserCertificate(w http.ResponseWriter, r *http.Request) {
	h.renderVerification(w, r, "Certificate", true)
}

// renderVerification shows one land verification. With certificate set, a
// request that has no certificate yet is reported as not found.
func (h *Handler) renderVerification(w http.ResponseWriter, r *http.Request, title string, certificate bool) {
	v, err := h.portal.LandVerification(r.Context(), token(r), chi.URLParam(r, "id"))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.notFound(w, r, title)
			return
		}
		if h.backendFailed(w, r, "land_verification", err) {
			return
		}
		p := h.page(r, title, nil)
		p.Error = "This item could not be loaded right now."
		h.views.Render(w, r, http.StatusOK, "section_page", p)
		return
	}
	if certificate && v.CertificateID == "" {
		h.notFound(w, r, title)
		return
	}
	h.views.Render(w, r, http.StatusOK, "verification", h.page(r, title, v))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "profile", h.page(r, "Profile", nil))
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
