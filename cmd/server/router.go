package main

import (
	"net/http"

	adminhttp "catalogadmin/internal/admin/transport/http"
	"catalogadmin/internal/config"
	producthttp "catalogadmin/internal/product/transport/http"
	"catalogadmin/internal/upload"
	"catalogadmin/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthChecker interface {
	Healthy() bool
}

func newRouter(
	cfg *config.Config,
	ah *adminhttp.Handler,
	ph *producthttp.Handler,
	tokens middleware.TokenVerifier,
	uploads *upload.Store,
	health healthChecker,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MetricsMiddleware)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if !health.Healthy() {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})

	if cfg.MetricsEnabled() {
		r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword)).
			Handle("/metrics", promhttp.Handler())
	}

	r.Handle(uploads.URLPrefix()+"/*", uploads.Handler())

	r.Group(func(pub chi.Router) {
		pub.Use(middleware.ValidateRequest)

		pub.Get("/", ah.Home)
		pub.Get("/table", ah.Table)
		pub.Get("/register", ah.ShowRegister)
		pub.Post("/register", ah.Register)
		pub.Get("/login", ah.ShowLogin)
		pub.Post("/login", ah.Login)
		pub.Get("/logout", ah.Logout)
	})

	// protected
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.ValidateRequest)
		pr.Use(middleware.JWTAuth(tokens, cfg.CookieSecure))

		pr.Get("/dashboard", ah.Dashboard)
		pr.Get("/profile", ah.Profile)
		pr.Post("/profile", ah.UpdateProfile)

		pr.Get("/product-form", ph.List)
		pr.Post("/add-product", ph.Create)
		pr.Get("/edit-product/{id}", ph.Edit)
		pr.Post("/update-product/{id}", ph.Update)
		pr.Post("/delete-product/{id}", ph.Delete)
	})

	return r
}
