package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"unibuild/internal/backend"
	"unibuild/pkg/platform/httputil"
)

type ctxKey struct{}

type okEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, okEnvelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	httputil.WriteJSON(w, status, errEnvelope{Message: message})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.RLock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	s.mu.RUnlock()
	if !ok || a.password != in.Password {
		writeFailure(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	s.respondWithToken(w, r, http.StatusOK, a)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in backend.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	switch {
	case !in.TermsAccepted:
		writeFailure(w, http.StatusBadRequest, msgTermsRequired)
		return
	case !slices.Contains(backend.RegisterRoles, in.Role):
		writeFailure(w, http.StatusBadRequest, msgInvalidRole)
		return
	case in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "":
		writeFailure(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	s.mu.Lock()
	key := strings.ToLower(in.Email)
	if _, taken := s.accounts[key]; taken {
		s.mu.Unlock()
		writeFailure(w, http.StatusConflict, msgEmailTaken)
		return
	}
	s.addAccountLocked(in.Name, in.Email, in.Phone, in.Password, []string{in.Role})
	a := s.accounts[key]
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "account registered", "user_id", a.user.ID, "role", in.Role)
	s.respondWithToken(w, r, http.StatusCreated, a)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, a *account) {
	token, err := s.issueToken(a.user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "sign token", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user := a.user
	writeData(w, status, map[string]any{"token": token, "user": user})
}

// requireToken resolves the bearer token to a user id.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeFailure(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		sub, err := s.subject(raw)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		s.mu.RLock()
		_, known := s.userByID(sub)
		s.mu.RUnlock()
		if !known {
			writeFailure(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	u, _ := s.userByID(userID(r))
	s.mu.RUnlock()
	writeData(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleLandVerifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positive(q.Get("page"), 1)
	limit := positive(q.Get("limit"), 10)

	s.mu.RLock()
	var matched []backend.LandVerification
	for _, v := range s.verifications[userID(r)] {
		if t := q.Get("type"); t != "" && v.Type != t {
			continue
		}
		if st := q.Get("status"); st != "" && v.Status != st {
			continue
		}
		matched = append(matched, v)
	}
	s.mu.RUnlock()

	// Newest first.
	slices.SortStableFunc(matched, func(a, b backend.LandVerification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	writeData(w, http.StatusOK, backend.LandVerificationPage{
		Verifications: append([]backend.LandVerification{}, matched[start:end]...),
		Total:         total,
		Page:          page,
		Limit:         limit,
		TotalPages:    (total + limit - 1) / limit,
	})
}

func (s *Server) handleLandVerification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.verifications[userID(r)] {
		if v.ID == id {
			writeData(w, http.StatusOK, v)
			return
		}
	}
	writeFailure(w, http.StatusNotFound, msgNotFound)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	p := s.profiles[userID(r)]
	s.mu.RUnlock()
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleDesigns(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := capped(s.designs[userID(r)], r)
	s.mu.RUnlock()
	writeData(w, http.StatusOK, map[string]any{"submissions": out})
}

func (s *Server) handlePermits(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := capped(s.permits[userID(r)], r)
	s.mu.RUnlock()
	writeData(w, http.StatusOK, map[string]any{"permitRequests": out})
}

// capped copies items, honouring an optional limit query parameter.
func capped[T any](items []T, r *http.Request) []T {
	out := append([]T{}, items...)
	if limit := positive(r.URL.Query().Get("limit"), 0); limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func positive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// handleRequestLand files a pending request of kind for the caller.
func (s *Server) handleRequestLand(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ParcelID string `json:"parcelId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		in.ParcelID = strings.TrimSpace(in.ParcelID)
		if in.ParcelID == "" {
			writeFailure(w, http.StatusBadRequest, msgParcelRequired)
			return
		}
		v := s.AddLandVerification(userID(r), backend.LandVerification{
			Type:     kind,
			ParcelID: in.ParcelID,
			Status:   "pending",
		})
		s.logger.InfoContext(r.Context(), "land verification requested", "user_id", userID(r), "type", kind)
		writeData(w, http.StatusCreated, v)
	}
}

// handleRegistration records one professional registration per user and
// opens a pending professional profile when the user has none.
func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var in backend.RegistrationPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	info, category := in.PersonalInfo, in.Category
	if info.FirstName == "" || info.Email == "" || info.Telephone == "" ||
		!slices.Contains(backend.RegistrationProfessions, category.Profession) ||
		!slices.Contains(backend.RegistrationLevels, category.Level) {
		writeFailure(w, http.StatusBadRequest, msgRegistrationFields)
		return
	}

	id := userID(r)
	s.mu.Lock()
	if prev, ok := s.registrations[id]; ok && prev.Status == "pending" {
		s.mu.Unlock()
		writeFailure(w, http.StatusConflict, msgRegistrationExists)
		return
	}
	reg := backend.Registration{ID: uuid.NewString(), UserID: id, Status: "pending", CreatedAt: s.now()}
	s.registrations[id] = reg
	if _, ok := s.profiles[id]; !ok {
		now := s.now()
		s.profiles[id] = &backend.ProfessionalProfile{
			ID:             uuid.NewString(),
			UserID:         id,
			ProfessionType: category.Profession,
			Status:         "pending",
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "professional registration submitted", "user_id", id, "profession", category.Profession)
	writeData(w, http.StatusCreated, reg)
}
