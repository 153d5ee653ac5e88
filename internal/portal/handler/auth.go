package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"unibuild/internal/access"
	"unibuild/internal/backend"
	"unibuild/internal/portal/views"
	"unibuild/internal/ratelimit"
	"unibuild/internal/session/models"
	dErrors "unibuild/pkg/domain-errors"
	"unibuild/pkg/platform/middleware/request"
)

const (
	msgCredentialsRequired = "Email and password are required."
	msgSignInFailed        = "Sign in failed. Please try again."
	msgRegisterFailed      = "Registration failed. Please try again."
	msgTermsRequired       = "You must accept the Terms of Service to register."
	msgRegisterIncomplete  = "Name, email, phone and password are required."
	msgUnknownRole         = "Choose User, Architect or Engineer."
	msgTooManyAttempts     = "Too many attempts. Try again in %d seconds."
)

type loginForm struct {
	From  string
	Email string
}

type roleOption struct {
	Value string
	Label string
}

var registerRoleOptions = []roleOption{
	{Value: "USER", Label: "User (Citizen)"},
	{Value: "ARCHITECT", Label: "Architect"},
	{Value: "ENGINEER", Label: "Engineer"},
}

type registerForm struct {
	Name          string
	Email         string
	Phone         string
	Role          string
	TermsAccepted bool
	Roles         []roleOption
}

// fromParam keeps only a return path the login flow may honour.
func fromParam(r *http.Request) string {
	from, ok := access.SafeReturnPath(r.FormValue(access.FromParam))
	if !ok {
		return ""
	}
	return from
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	from := fromParam(r)
	state := h.sessions.Load(r.Context(), h.storeFor(w, r))
	switch {
	case state.Kind == models.StateLoading:
		h.loading(w, r)
	case state.IsAuthenticated():
		http.Redirect(w, r, access.AfterLogin(from, state.User.EffectiveRoles()), http.StatusSeeOther)
	default:
		h.views.Render(w, r, http.StatusOK, "login", views.Page{Title: "Sign in", Data: loginForm{From: from}})
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginForm{}, msgCredentialsRequired)
		return
	}
	form := loginForm{From: fromParam(r), Email: strings.TrimSpace(r.PostFormValue("email"))}
	password := r.PostFormValue("password")
	if form.Email == "" || password == "" {
		h.renderLogin(w, r, http.StatusBadRequest, form, msgCredentialsRequired)
		return
	}

	user, err := h.sessions.Login(ctx, h.storeFor(w, r), form.Email, password)
	if err != nil {
		h.logger.InfoContext(ctx, "login failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		status, message := formError(err, msgSignInFailed)
		h.renderLogin(w, r, status, form, message)
		return
	}

	http.Redirect(w, r, access.AfterLogin(form.From, user.EffectiveRoles()), http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form loginForm, message string) {
	h.views.Render(w, r, status, "login", views.Page{Title: "Sign in", Error: message, Data: form})
}

func (h *Handler) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Load(r.Context(), h.storeFor(w, r))
	switch {
	case state.Kind == models.StateLoading:
		h.loading(w, r)
	case state.IsAuthenticated():
		http.Redirect(w, r, state.User.Dashboard(), http.StatusSeeOther)
	default:
		h.renderRegister(w, r, http.StatusOK, registerForm{Role: "USER"}, "")
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, http.StatusBadRequest, registerForm{Role: "USER"}, msgRegisterIncomplete)
		return
	}
	form := registerForm{
		Name:          strings.TrimSpace(r.PostFormValue("name")),
		Email:         strings.TrimSpace(r.PostFormValue("email")),
		Phone:         strings.TrimSpace(r.PostFormValue("phone")),
		Role:          strings.ToUpper(strings.TrimSpace(r.PostFormValue("role"))),
		TermsAccepted: r.PostFormValue("terms") != "",
	}
	if form.Role == "" {
		form.Role = "USER"
	}
	password := r.PostFormValue("password")

	switch {
	case !form.TermsAccepted:
		h.renderRegister(w, r, http.StatusBadRequest, form, msgTermsRequired)
		return
	case !slices.Contains(backend.RegisterRoles, form.Role):
		h.renderRegister(w, r, http.StatusBadRequest, form, msgUnknownRole)
		return
	case form.Name == "" || form.Email == "" || form.Phone == "" || password == "":
		h.renderRegister(w, r, http.StatusBadRequest, form, msgRegisterIncomplete)
		return
	}

	_, err := h.sessions.Register(ctx, h.storeFor(w, r), backend.RegisterRequest{
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		Password:      password,
		Role:          form.Role,
		TermsAccepted: true,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "registration failed",
			"request_id", request.GetRequestID(ctx),
			"role", form.Role,
			"error", err,
		)
		status, message := formError(err, msgRegisterFailed)
		h.renderRegister(w, r, status, form, message)
		return
	}

	// The chosen role decides the landing page, not the roles echoed back.
	http.Redirect(w, r, access.DashboardPath([]string{form.Role}), http.StatusSeeOther)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form registerForm, message string) {
	form.Roles = registerRoleOptions
	h.views.Render(w, r, status, "register", views.Page{Title: "Register", Error: message, Data: form})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Logout(ctx, h.storeFor(w, r)); err != nil {
		h.logger.WarnContext(ctx, "logout could not clear session storage",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

// formError picks the status and message shown on a form after a backend
// failure. Messages from the backend are shown only for client errors.
func formError(err error, fallback string) (int, string) {
	de, ok := dErrors.As(err)
	if !ok {
		return http.StatusInternalServerError, fallback
	}
	status := dErrors.ToHTTPStatus(de.Code)
	switch de.Code {
	case dErrors.CodeBadRequest, dErrors.CodeUnauthorized, dErrors.CodeConflict, dErrors.CodeInvalidInput:
		if de.Message != "" {
			return status, de.Message
		}
	}
	return status, fallback
}

// denyAttempt re-renders the submitted form with a 429 when the client has
// used up its attempts.
func (h *Handler) denyAttempt(w http.ResponseWriter, r *http.Request, res ratelimit.Result) {
	message := fmt.Sprintf(msgTooManyAttempts, ratelimit.RetryAfterSeconds(res))
	if r.URL.Path == access.RegisterPath {
		h.renderRegister(w, r, http.StatusTooManyRequests, registerForm{Role: "USER"}, message)
		return
	}
	h.renderLogin(w, r, http.StatusTooManyRequests, loginForm{From: fromParam(r)}, message)
}
