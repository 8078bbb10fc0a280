package http

import (
	"errors"
	"net/http"
	"time"

	"catalogadmin/internal/admin"
	"catalogadmin/internal/admin/service"
	"catalogadmin/internal/api/dto"
	"catalogadmin/internal/upload"
	"catalogadmin/internal/view"
	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/middleware"
)

const (
	msgEmailExists     = "Email already exists"
	msgWeakPassword    = "Password must be at least 6 characters long and contain at least one uppercase and one lowercase letter"
	msgInvalidInput    = "Name and a valid email are required"
	msgAdminNotFound   = "Admin not found"
	msgInvalidPassword = "Invalid password"
	msgServerError     = "Server error"
	msgProfileUpdated  = "Profile updated successfully"
	msgNotImage        = "Picture must be a PNG, JPEG, GIF or WebP image"
	msgInvalidForm     = "Invalid form"
)

type TokenIssuer interface {
	Issue(adminID int64) (string, error)
	TTL() time.Duration
}

type Uploader interface {
	FromRequest(r *http.Request, field string) (string, error)
}

type Handler struct {
	AdminService *service.AdminService
	Tokens       TokenIssuer
	Uploads      Uploader
	View         view.Renderer
	SecureCookie bool
}

func NewHandler(as *service.AdminService, tokens TokenIssuer, uploads Uploader, renderer view.Renderer, secureCookie bool) *Handler {
	return &Handler{
		AdminService: as,
		Tokens:       tokens,
		Uploads:      uploads,
		View:         renderer,
		SecureCookie: secureCookie,
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", nil)
}

func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "table", nil)
}

func (h *Handler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "register", view.Data{"errorMessage": msgInvalidInput})
		return
	}

	req := dto.RegisterRequest{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	_, err := h.AdminService.Register(r.Context(), req)
	if err != nil {
		status, msg := http.StatusOK, ""
		switch {
		case errors.Is(err, service.ErrEmailExists):
			msg = msgEmailExists
		case errors.Is(err, service.ErrWeakPassword):
			msg = msgWeakPassword
		case errors.Is(err, service.ErrInvalidInput):
			msg = msgInvalidInput
		default:
			logger.FromContext(r.Context()).Error("error registering admin", "error", err)
			status, msg = http.StatusInternalServerError, msgServerError
		}
		h.render(w, r, status, "register", view.Data{
			"errorMessage": msg,
			"name":         req.Name,
			"email":        req.Email,
		})
		return
	}

	logger.FromContext(r.Context()).Info("admin registered", "email", req.Email)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "login", view.Data{"errorMessage": msgInvalidForm})
		return
	}
	email := r.PostFormValue("email")

	a, err := h.AdminService.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status, msg := http.StatusOK, ""
		switch {
		case errors.Is(err, service.ErrAdminNotFound):
			msg = msgAdminNotFound
		case errors.Is(err, service.ErrInvalidPassword):
			msg = msgInvalidPassword
		default:
			logger.FromContext(r.Context()).Error("error logging in admin", "error", err)
			status, msg = http.StatusInternalServerError, msgServerError
		}
		h.render(w, r, status, "login", view.Data{"errorMessage": msg, "email": email})
		return
	}

	token, err := h.Tokens.Issue(a.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("error issuing session token", "admin_id", a.ID, "error", err)
		h.render(w, r, http.StatusInternalServerError, "login", view.Data{"errorMessage": msgServerError})
		return
	}

	middleware.SetSessionCookie(w, token, h.Tokens.TTL(), h.SecureCookie)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.SecureCookie)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := h.currentAdmin(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", view.Data{"admin": a})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	a, ok := h.currentAdmin(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "profile", view.Data{"admin": a})
}

// UpdateProfile changes only the fields present in the form; a missing
// picture keeps the stored one.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseMultipartForm(middleware.MaxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	changes := admin.ProfileChanges{
		Name: formField(r, "name"),
		Bio:  formField(r, "bio"),
	}

	picture, err := h.Uploads.FromRequest(r, "picture")
	if err != nil {
		if errors.Is(err, upload.ErrNotImage) {
			h.renderProfileError(w, r, adminID, msgNotImage)
			return
		}
		h.serverError(w, r, "error storing profile picture", err)
		return
	}
	if picture != "" {
		changes.Picture = &picture
	}

	a, err := h.AdminService.UpdateProfile(r.Context(), adminID, changes)
	switch {
	case errors.Is(err, service.ErrAdminNotFound):
		http.Error(w, msgAdminNotFound, http.StatusNotFound)
		return
	case err != nil:
		h.serverError(w, r, "error updating admin profile", err)
		return
	}

	h.render(w, r, http.StatusOK, "profile", view.Data{"admin": a, "successMessage": msgProfileUpdated})
}

func (h *Handler) renderProfileError(w http.ResponseWriter, r *http.Request, adminID int64, msg string) {
	a, err := h.AdminService.Profile(r.Context(), adminID)
	if errors.Is(err, service.ErrAdminNotFound) {
		http.Error(w, msgAdminNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "error fetching admin", err)
		return
	}
	h.render(w, r, http.StatusOK, "profile", view.Data{"admin": a, "errorMessage": msg})
}

// currentAdmin loads the admin resolved by the auth guard, answering the
// request itself when that fails.
func (h *Handler) currentAdmin(w http.ResponseWriter, r *http.Request) (*admin.Admin, bool) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil, false
	}

	a, err := h.AdminService.Profile(r.Context(), adminID)
	if errors.Is(err, service.ErrAdminNotFound) {
		http.Error(w, msgAdminNotFound, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, "error fetching admin", err)
		return nil, false
	}
	return a, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) {
	if err := h.View.Render(w, status, name, data); err != nil {
		logger.FromContext(r.Context()).Error("render failed", "view", name, "error", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromContext(r.Context()).Error(msg, "error", err)
	http.Error(w, msgServerError, http.StatusInternalServerError)
}

func formField(r *http.Request, key string) *string {
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}
