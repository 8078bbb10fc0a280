package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"catalogadmin/internal/admin"
	adminservice "catalogadmin/internal/admin/service"
	"catalogadmin/internal/api/dto"
	"catalogadmin/internal/product/service"
	"catalogadmin/internal/upload"
	"catalogadmin/internal/view"
	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

const (
	msgAllFieldsRequired = "All fields are required"
	msgInvalidPrice      = "Price must be a non-negative number"
	msgNotImage          = "Image must be a PNG, JPEG, GIF or WebP image"
	msgProductNotFound   = "Product not found"
	msgAdminNotFound     = "Admin not found"
	msgServerError       = "Server error"
)

type AdminLookup interface {
	Profile(ctx context.Context, id int64) (*admin.Admin, error)
}

type Uploader interface {
	FromRequest(r *http.Request, field string) (string, error)
}

type Handler struct {
	ProductService *service.ProductService
	Admins         AdminLookup
	Uploads        Uploader
	View           view.Renderer
}

func NewHandler(ps *service.ProductService, admins AdminLookup, uploads Uploader, renderer view.Renderer) *Handler {
	return &Handler{
		ProductService: ps,
		Admins:         admins,
		Uploads:        uploads,
		View:           renderer,
	}
}

// List renders the paginated catalog (GET /product-form?page=&limit=).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := h.currentAdmin(w, r)
	if !ok {
		return
	}

	page, limit := service.ParsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	result, err := h.ProductService.List(r.Context(), page, limit)
	if err != nil {
		h.serverError(w, r, "error fetching products", err)
		return
	}

	h.render(w, r, http.StatusOK, "product-form", view.Data{
		"admin":        a,
		"products":     result.Products,
		"currentPage":  result.CurrentPage,
		"totalPages":   result.TotalPages,
		"limit":        result.Limit,
		"errorMessage": r.URL.Query().Get("error"),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	if _, err := h.ProductService.Validate(req); err != nil {
		redirectWithError(w, r, "/product-form", validationMessage(err))
		return
	}

	image, err := h.Uploads.FromRequest(r, "image")
	if errors.Is(err, upload.ErrNotImage) {
		redirectWithError(w, r, "/product-form", msgNotImage)
		return
	}
	if err != nil {
		h.serverError(w, r, "error storing product image", err)
		return
	}
	req.Image = image

	p, err := h.ProductService.Create(r.Context(), req)
	if err != nil {
		h.serverError(w, r, "error creating product", err)
		return
	}

	logger.FromContext(r.Context()).Info("product created", "product_id", p.ID)
	http.Redirect(w, r, "/product-form", http.StatusFound)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	a, ok := h.currentAdmin(w, r)
	if !ok {
		return
	}

	id, err := productID(r)
	if err != nil {
		http.Error(w, msgProductNotFound, http.StatusNotFound)
		return
	}

	p, err := h.ProductService.Get(r.Context(), id)
	if errors.Is(err, service.ErrProductNotFound) {
		http.Error(w, msgProductNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "error fetching product", err)
		return
	}

	h.render(w, r, http.StatusOK, "edit-product", view.Data{
		"admin":        a,
		"product":      p,
		"errorMessage": r.URL.Query().Get("error"),
	})
}

// Update reports form problems through ?error= on the edit page.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		http.Error(w, msgProductNotFound, http.StatusNotFound)
		return
	}
	editURL := "/edit-product/" + strconv.FormatInt(id, 10)

	req, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	if _, err := h.ProductService.Validate(req); err != nil {
		redirectWithError(w, r, editURL, validationMessage(err))
		return
	}

	image, err := h.Uploads.FromRequest(r, "image")
	if errors.Is(err, upload.ErrNotImage) {
		redirectWithError(w, r, editURL, msgNotImage)
		return
	}
	if err != nil {
		h.serverError(w, r, "error storing product image", err)
		return
	}
	req.Image = image

	_, err = h.ProductService.Update(r.Context(), id, req)
	if errors.Is(err, service.ErrProductNotFound) {
		http.Error(w, msgProductNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, "error updating product", err)
		return
	}

	logger.FromContext(r.Context()).Info("product updated", "product_id", id)
	http.Redirect(w, r, "/product-form", http.StatusFound)
}

// Delete always lands back on the listing; unknown ids are not an error.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		http.Redirect(w, r, "/product-form", http.StatusFound)
		return
	}

	if err := h.ProductService.Delete(r.Context(), id); err != nil {
		h.serverError(w, r, "error deleting product", err)
		return
	}

	logger.FromContext(r.Context()).Info("product deleted", "product_id", id)
	http.Redirect(w, r, "/product-form", http.StatusFound)
}

func (h *Handler) parseProductForm(w http.ResponseWriter, r *http.Request) (dto.ProductRequest, bool) {
	if err := r.ParseMultipartForm(middleware.MaxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return dto.ProductRequest{}, false
	}

	return dto.ProductRequest{
		Name:        r.PostFormValue("name"),
		Price:       r.PostFormValue("price"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
	}, true
}

func (h *Handler) currentAdmin(w http.ResponseWriter, r *http.Request) (*admin.Admin, bool) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil, false
	}

	a, err := h.Admins.Profile(r.Context(), adminID)
	if errors.Is(err, adminservice.ErrAdminNotFound) {
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

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func validationMessage(err error) string {
	if errors.Is(err, service.ErrInvalidPrice) {
		return msgInvalidPrice
	}
	return msgAllFieldsRequired
}

func redirectWithError(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.Redirect(w, r, target+"?error="+url.QueryEscape(msg), http.StatusFound)
}
