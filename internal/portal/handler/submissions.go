package handler

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"unibuild/internal/backend"
	dErrors "unibuild/pkg/domain-errors"
	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/platform/middleware/request"
)

const (
	msgVerifyLandIncomplete = "Please select a request type and enter the Parcel ID."
	msgPaymentAcknowledge   = "Please acknowledge the payment placeholder to continue."
	msgVerifyLandFailed     = "Request failed. Please try again."
	msgRequestSubmitted     = "Your request has been submitted. You can track its status below."

	msgRegistrationIncomplete = "First name, nationality, place of birth, mailing address, email and telephone are required."
	msgRegistrationCategory   = "Choose a profession and a level from the list."
	msgRegistrationOther      = "Describe your profession when choosing Other."
	msgRegistrationFailed     = "Submission failed."
	msgRegistrationSubmitted  = "Your registration has been submitted for review."

	// Blank academic and professional rows offered on the registration form.
	qualificationRows = 3
)

type landRequestOption struct {
	Kind        string
	Label       string
	Description string
	Price       string
}

var landRequestOptions = []landRequestOption{
	{
		Kind:        backend.RequestForensicSearch,
		Label:       "Forensic Search",
		Description: "Verify land records and ownership. Results typically within 5–7 days.",
		Price:       "$5–$10",
	},
	{
		Kind:        backend.RequestLPC,
		Label:       "Land Parcel Certificate (LPC)",
		Description: "Official certificate for your parcel. Requires verified parcel details.",
		Price:       "$50–$100",
	},
}

type verifyLandForm struct {
	Kind         string
	ParcelID     string
	County       string
	Block        string
	Acknowledged bool
	Options      []landRequestOption
}

func (h *Handler) handleVerifyLandForm(w http.ResponseWriter, r *http.Request) {
	h.renderVerifyLand(w, r, http.StatusOK, verifyLandForm{}, "")
}

func (h *Handler) handleVerifyLand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderVerifyLand(w, r, http.StatusBadRequest, verifyLandForm{}, msgVerifyLandIncomplete)
		return
	}
	form := verifyLandForm{
		Kind:         strings.TrimSpace(r.PostFormValue("type")),
		ParcelID:     strings.TrimSpace(r.PostFormValue("parcel_id")),
		County:       strings.TrimSpace(r.PostFormValue("county")),
		Block:        strings.TrimSpace(r.PostFormValue("block")),
		Acknowledged: r.PostFormValue("payment_ack") != "",
	}
	switch {
	case !backend.IsLandRequestKind(form.Kind) || form.ParcelID == "":
		h.renderVerifyLand(w, r, http.StatusBadRequest, form, msgVerifyLandIncomplete)
		return
	case !form.Acknowledged:
		h.renderVerifyLand(w, r, http.StatusBadRequest, form, msgPaymentAcknowledge)
		return
	}

	v, err := h.portal.RequestLandVerification(ctx, token(r), form.Kind, form.ParcelID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) && h.backendFailed(w, r, "land_verification_request", err) {
			return
		}
		h.logger.InfoContext(ctx, "land verification request failed",
			"request_id", request.GetRequestID(ctx),
			"type", form.Kind,
			"error", err,
		)
		status, message := formError(err, msgVerifyLandFailed)
		h.renderVerifyLand(w, r, status, form, message)
		return
	}

	h.emitSubmission(r, audit.EventLandVerificationRequested, form.Kind+" "+v.ID)
	http.Redirect(w, r, "/user/requests?submitted=1", http.StatusSeeOther)
}

func (h *Handler) renderVerifyLand(w http.ResponseWriter, r *http.Request, status int, form verifyLandForm, message string) {
	form.Options = landRequestOptions
	p := h.page(r, "Verify land", form)
	p.Error = message
	h.views.Render(w, r, status, "verify_land", p)
}

type registrationForm struct {
	backend.RegistrationPayload
	Professions []string
	Levels      []string
}

func (h *Handler) handleRegistrationForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegistration(w, r, http.StatusOK, registrationForm{}, "")
}

func (h *Handler) handleRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderRegistration(w, r, http.StatusBadRequest, registrationForm{}, msgRegistrationIncomplete)
		return
	}
	form := registrationForm{RegistrationPayload: registrationFromForm(r)}
	info, category := form.PersonalInfo, form.Category
	switch {
	case info.FirstName == "" || info.Nationality == "" || info.PlaceOfBirth == "" ||
		info.MailingAddress == "" || info.Email == "" || info.Telephone == "":
		h.renderRegistration(w, r, http.StatusBadRequest, form, msgRegistrationIncomplete)
		return
	case !slices.Contains(backend.RegistrationProfessions, category.Profession) ||
		!slices.Contains(backend.RegistrationLevels, category.Level):
		h.renderRegistration(w, r, http.StatusBadRequest, form, msgRegistrationCategory)
		return
	case category.Profession == "Other" && category.OtherProfession == "":
		h.renderRegistration(w, r, http.StatusBadRequest, form, msgRegistrationOther)
		return
	}
	if form.PersonalInfo.DateOfBirth == "" {
		form.PersonalInfo.DateOfBirth = time.Now().UTC().Format(time.DateOnly)
	}

	reg, err := h.portal.SubmitRegistration(ctx, token(r), form.RegistrationPayload)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) && h.backendFailed(w, r, "registration", err) {
			return
		}
		h.logger.InfoContext(ctx, "professional registration failed",
			"request_id", request.GetRequestID(ctx),
			"profession", category.Profession,
			"error", err,
		)
		status, message := formError(err, msgRegistrationFailed)
		h.renderRegistration(w, r, status, form, message)
		return
	}

	h.emitSubmission(r, audit.EventRegistrationSubmitted, reg.ID)
	http.Redirect(w, r, "/professional/dashboard?registered=1", http.StatusSeeOther)
}

// registrationFromForm reads the posted fields. Qualification rows arrive as
// parallel lists and only complete rows are kept.
func registrationFromForm(r *http.Request) backend.RegistrationPayload {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	column := func(name string, i int) string {
		values := r.PostForm[name]
		if i >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[i])
	}

	p := backend.RegistrationPayload{
		PersonalInfo: backend.RegistrationPersonalInfo{
			FirstName:      field("first_name"),
			MiddleName:     field("middle_name"),
			ThirdName:      field("third_name"),
			FourthName:     field("fourth_name"),
			Nationality:    field("nationality"),
			PlaceOfBirth:   field("place_of_birth"),
			DateOfBirth:    field("date_of_birth"),
			MailingAddress: field("mailing_address"),
			Email:          field("email"),
			Telephone:      field("telephone"),
		},
		Category: backend.RegistrationCategory{
			Profession:      field("profession"),
			OtherProfession: field("other_profession"),
			Level:           field("level"),
		},
		AcademicQualifications:     []backend.AcademicQualification{},
		ProfessionalQualifications: []backend.ProfessionalQualification{},
	}
	if p.Category.Profession != "Other" {
		p.Category.OtherProfession = ""
	}

	for i := range r.PostForm["academic_type"] {
		a := backend.AcademicQualification{
			QualificationType: column("academic_type", i),
			Institution:       column("academic_institution", i),
			Specialization:    column("academic_specialization", i),
			DateOfAward:       column("academic_date", i),
		}
		if a.QualificationType != "" && a.Institution != "" && a.Specialization != "" && a.DateOfAward != "" {
			p.AcademicQualifications = append(p.AcademicQualifications, a)
		}
	}
	for i := range r.PostForm["professional_type"] {
		q := backend.ProfessionalQualification{
			QualificationType: column("professional_type", i),
			Institution:       column("professional_institution", i),
			DateOfAward:       column("professional_date", i),
		}
		if q.QualificationType != "" && q.Institution != "" && q.DateOfAward != "" {
			p.ProfessionalQualifications = append(p.ProfessionalQualifications, q)
		}
	}
	return p
}

func (h *Handler) renderRegistration(w http.ResponseWriter, r *http.Request, status int, form registrationForm, message string) {
	form.Professions = backend.RegistrationProfessions
	form.Levels = backend.RegistrationLevels
	p := h.page(r, "Professional registration", form)
	p.Error = message
	h.views.Render(w, r, status, "professional_register", p)
}

// Rows yields the blank qualification rows offered below the filled ones.
func (f registrationForm) Rows() []int {
	return make([]int, qualificationRows)
}

func (h *Handler) emitSubmission(r *http.Request, action audit.AuditEvent, subject string) {
	if h.auditor == nil {
		return
	}
	ctx := r.Context()
	var userID string
	if u := sessionState(r).User; u != nil {
		userID = u.ID
	}
	err := h.auditor.Emit(ctx, audit.Event{Action: string(action), UserID: userID, Subject: subject})
	if err != nil {
		h.logger.DebugContext(ctx, "audit emit failed", "error", err)
	}
}
