package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"unibuild/internal/session/models"
	dErrors "unibuild/pkg/domain-errors"
)

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterRequest is the account sign-up payload.
type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// Roles accepted at sign-up.
var RegisterRoles = []string{"USER", "ARCHITECT", "ENGINEER"}

// LandVerification is one citizen land verification request.
type LandVerification struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ParcelID        string    `json:"parcelId"`
	ParcelNumber    string    `json:"parcelNumber,omitempty"`
	Town            string    `json:"town,omitempty"`
	BlockNumber     string    `json:"blockNumber,omitempty"`
	Status          string    `json:"status"`
	CertificateID   string    `json:"certificateId,omitempty"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LandVerificationPage is one page of a user's land verifications.
type LandVerificationPage struct {
	Verifications []LandVerification `json:"verifications"`
	Total         int                `json:"total"`
	Page          int                `json:"page"`
	Limit         int                `json:"limit"`
	TotalPages    int                `json:"totalPages"`
}

// LandVerificationQuery filters LandVerifications. Zero values are omitted.
type LandVerificationQuery struct {
	Page   int
	Limit  int
	Type   string
	Status string
}

// ProfessionalProfile is an engineer or architect licensing submission.
type ProfessionalProfile struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	ProfessionType    string            `json:"professionType"`
	YearsOfExperience int               `json:"yearsOfExperience"`
	LicenseNumber     string            `json:"licenseNumber"`
	Documents         map[string]string `json:"documents"`
	Status            string            `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// DesignSubmission is a design uploaded for compliance checking.
type DesignSubmission struct {
	ID               string    `json:"id"`
	ProjectName      string    `json:"projectName"`
	Location         string    `json:"location"`
	ProjectValue     float64   `json:"projectValue"`
	ComplianceStatus string    `json:"complianceStatus"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PermitRequest is a building permit application.
type PermitRequest struct {
	ID                 string    `json:"id"`
	DesignSubmissionID string    `json:"designSubmissionId"`
	Status             string    `json:"status"`
	FeeAmount          float64   `json:"feeAmount"`
	PermitNumber       string    `json:"permitNumber,omitempty"`
	ProjectName        string    `json:"projectName,omitempty"`
	Location           string    `json:"location,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, call{
		endpoint: "login",
		method:   http.MethodPost,
		path:     "/api/auth/login",
		body:     map[string]string{"email": email, "password": password},
	}, &out)
	return out, err
}

// Register creates an account and returns its first session token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, call{
		endpoint: "register",
		method:   http.MethodPost,
		path:     "/api/auth/register",
		body:     req,
	}, &out)
	return out, err
}

// Me returns the user behind token.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	err := c.do(ctx, call{
		endpoint: "me",
		method:   http.MethodGet,
		path:     "/api/auth/me",
		token:    token,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errMissingUser
	}
	return out.User, nil
}

// LandVerifications lists the caller's land verification requests.
func (c *Client) LandVerifications(ctx context.Context, token string, q LandVerificationQuery) (LandVerificationPage, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	var out LandVerificationPage
	err := c.do(ctx, call{
		endpoint: "land_verifications_mine",
		method:   http.MethodGet,
		path:     "/api/land-verifications/mine",
		query:    query,
		token:    token,
	}, &out)
	return out, err
}

// LandVerification returns one of the caller's land verification requests.
func (c *Client) LandVerification(ctx context.Context, token, id string) (LandVerification, error) {
	var out LandVerification
	err := c.do(ctx, call{
		endpoint: "land_verification_mine",
		method:   http.MethodGet,
		path:     "/api/land-verifications/mine/" + url.PathEscape(id),
		token:    token,
	}, &out)
	return out, err
}

// ProfessionalProfile returns the caller's profile, or nil if none was submitted.
func (c *Client) ProfessionalProfile(ctx context.Context, token string) (*ProfessionalProfile, error) {
	var out *ProfessionalProfile
	err := c.do(ctx, call{
		endpoint: "professional_profile_me",
		method:   http.MethodGet,
		path:     "/api/professional-profile/me",
		token:    token,
	}, &out)
	return out, err
}

// DesignSubmissions lists the caller's design submissions.
func (c *Client) DesignSubmissions(ctx context.Context, token string, limit int) ([]DesignSubmission, error) {
	var out struct {
		Submissions []DesignSubmission `json:"submissions"`
	}
	err := c.do(ctx, call{
		endpoint: "design_submissions_mine",
		method:   http.MethodGet,
		path:     "/api/design-submissions/mine",
		query:    limitQuery(limit),
		token:    token,
	}, &out)
	return out.Submissions, err
}

// PermitRequests lists the caller's permit requests.
func (c *Client) PermitRequests(ctx context.Context, token string, limit int) ([]PermitRequest, error) {
	var out struct {
		PermitRequests []PermitRequest `json:"permitRequests"`
	}
	err := c.do(ctx, call{
		endpoint: "permit_requests_mine",
		method:   http.MethodGet,
		path:     "/api/permit-requests/mine",
		query:    limitQuery(limit),
		token:    token,
	}, &out)
	return out.PermitRequests, err
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// Land verification request kinds.
const (
	RequestForensicSearch = "forensic_search"
	RequestLPC            = "lpc"
)

var landRequestPaths = map[string]string{
	RequestForensicSearch: "/api/land-verifications/forensic-search",
	RequestLPC:            "/api/land-verifications/lpc",
}

// IsLandRequestKind reports whether kind can be requested.
func IsLandRequestKind(kind string) bool {
	_, ok := landRequestPaths[kind]
	return ok
}

// RequestLandVerification files a forensic search or LPC request for a parcel.
func (c *Client) RequestLandVerification(ctx context.Context, token, kind, parcelID string) (LandVerification, error) {
	path, ok := landRequestPaths[kind]
	if !ok {
		return LandVerification{}, dErrors.New(dErrors.CodeInvalidInput, "unknown land verification request kind")
	}
	var out LandVerification
	err := c.do(ctx, call{
		endpoint: "land_verification_" + kind,
		method:   http.MethodPost,
		path:     path,
		token:    token,
		body:     map[string]string{"parcelId": parcelID},
	}, &out)
	return out, err
}

// RegistrationPersonalInfo is the applicant section of a professional registration.
type RegistrationPersonalInfo struct {
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName,omitempty"`
	ThirdName      string `json:"thirdName,omitempty"`
	FourthName     string `json:"fourthName,omitempty"`
	Nationality    string `json:"nationality"`
	PlaceOfBirth   string `json:"placeOfBirth"`
	DateOfBirth    string `json:"dateOfBirth"`
	MailingAddress string `json:"mailingAddress"`
	Email          string `json:"email"`
	Telephone      string `json:"telephone"`
}

// RegistrationCategory is the profession and level applied for.
type RegistrationCategory struct {
	Profession      string `json:"profession"`
	OtherProfession string `json:"otherProfession,omitempty"`
	Level           string `json:"level"`
}

type AcademicQualification struct {
	QualificationType string `json:"qualificationType"`
	Institution       string `json:"institution"`
	Specialization    string `json:"specialization"`
	DateOfAward       string `json:"dateOfAward"`
}

type ProfessionalQualification struct {
	QualificationType string `json:"qualificationType"`
	Institution       string `json:"institution"`
	DateOfAward       string `json:"dateOfAward"`
}

// RegistrationPayload is a professional body registration.
type RegistrationPayload struct {
	PersonalInfo               RegistrationPersonalInfo    `json:"personalInfo"`
	Category                   RegistrationCategory        `json:"category"`
	AcademicQualifications     []AcademicQualification     `json:"academicQualifications"`
	ProfessionalQualifications []ProfessionalQualification `json:"professionalQualifications"`
}

// Registration is the stored registration returned on submission.
type Registration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Professions and levels offered on the registration form.
var (
	RegistrationProfessions = []string{"Architect", "Civil Engineer", "Mechanical Engineer", "Electrical Engineer", "Structural Engineer", "Other"}
	RegistrationLevels      = []string{"Graduate", "Professional", "Consultant", "Specialist"}
)

// SubmitRegistration files the caller's professional registration.
func (c *Client) SubmitRegistration(ctx context.Context, token string, p RegistrationPayload) (Registration, error) {
	var out Registration
	err := c.do(ctx, call{
		endpoint: "registration",
		method:   http.MethodPost,
		path:     "/api/registration",
		token:    token,
		body:     p,
	}, &out)
	return out, err
}
