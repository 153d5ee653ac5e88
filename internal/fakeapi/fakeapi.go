// Package fakeapi is an in-memory stand-in for the UniBuild API. It speaks the
// same envelope and endpoints the portal's backend client calls and is used for
// local runs, e2e scenarios and contract tests.
package fakeapi

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"unibuild/internal/backend"
	"unibuild/internal/session/models"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	msgInvalidCredentials = "Invalid email or password"
	msgUnauthorized       = "Not authorized"
	msgTermsRequired      = "You must accept the Terms of Service"
	msgInvalidRole        = "Invalid role"
	msgMissingFields      = "Name, email, phone and password are required"
	msgEmailTaken         = "Email already registered"
	msgNotFound           = "Land verification not found"
	msgParcelRequired     = "Parcel ID is required"
	msgRegistrationFields = "First name, email, telephone, profession and level are required"
	msgRegistrationExists = "Registration already submitted"
)

var errUnknownAccount = errors.New("unknown account")

type account struct {
	user     models.User
	password string
	phone    string
}

// Server holds accounts and per-user records.
type Server struct {
	mu            sync.RWMutex
	accounts      map[string]*account // by lower-cased email
	verifications map[string][]backend.LandVerification
	profiles      map[string]*backend.ProfessionalProfile
	designs       map[string][]backend.DesignSubmission
	permits       map[string][]backend.PermitRequest
	registrations map[string]backend.Registration

	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Server)

// WithSecret sets the HS256 key tokens are signed with.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		if len(secret) > 0 {
			s.secret = secret
		}
	}
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		accounts:      make(map[string]*account),
		verifications: make(map[string][]backend.LandVerification),
		profiles:      make(map[string]*backend.ProfessionalProfile),
		designs:       make(map[string][]backend.DesignSubmission),
		permits:       make(map[string][]backend.PermitRequest),
		registrations: make(map[string]backend.Registration),
		secret:        []byte(uuid.NewString()),
		ttl:           DefaultTokenTTL,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/auth/me", s.handleMe)
			r.Get("/land-verifications/mine", s.handleLandVerifications)
			r.Get("/land-verifications/mine/{id}", s.handleLandVerification)
			r.Post("/land-verifications/forensic-search", s.handleRequestLand(backend.RequestForensicSearch))
			r.Post("/land-verifications/lpc", s.handleRequestLand(backend.RequestLPC))
			r.Post("/registration", s.handleRegistration)
			r.Get("/professional-profile/me", s.handleProfile)
			r.Get("/design-submissions/mine", s.handleDesigns)
			r.Get("/permit-requests/mine", s.handlePermits)
		})
	})
	return r
}

// AddAccount creates an account and returns its user.
func (s *Server) AddAccount(name, email, password string, roles ...string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(name, email, "", password, roles)
}

func (s *Server) addAccountLocked(name, email, phone, password string, roles []string) models.User {
	u := models.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Roles: slices.Clone(roles),
	}
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password, phone: phone}
	return u
}

// SetRoles replaces the roles of the account behind email. Tokens already
// issued keep working and report the new roles from /auth/me.
func (s *Server) SetRoles(email string, roles ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return errUnknownAccount
	}
	a.user.Roles = slices.Clone(roles)
	return nil
}

// AddLandVerification appends a record for userID. Empty IDs and timestamps are filled in.
func (s *Server) AddLandVerification(userID string, v backend.LandVerification) backend.LandVerification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	s.verifications[userID] = append(s.verifications[userID], v)
	return v
}

// SetProfessionalProfile stores the profile for userID; nil removes it.
func (s *Server) SetProfessionalProfile(userID string, p *backend.ProfessionalProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		delete(s.profiles, userID)
		return
	}
	cp := *p
	cp.UserID = userID
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.profiles[userID] = &cp
}

func (s *Server) AddDesignSubmission(userID string, d backend.DesignSubmission) backend.DesignSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	s.designs[userID] = append(s.designs[userID], d)
	return d
}

func (s *Server) AddPermitRequest(userID string, p backend.PermitRequest) backend.PermitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.permits[userID] = append(s.permits[userID], p)
	return p
}

// issueToken signs a token for userID.
func (s *Server) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// subject verifies token and returns its user id.
func (s *Server) subject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// userByID must be called with s.mu held.
func (s *Server) userByID(id string) (models.User, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return models.User{}, false
}
