package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes builds the chi router for the whole API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if h.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logContext)
	r.Use(h.logRequests)
	r.Use(h.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/health", h.health)

	limited := h.rateLimit(h.limiter)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/register", h.register)
			r.With(limited).Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.With(h.requireUser).Get("/profile", h.profile)
			r.With(h.requireUser).Patch("/profile", h.updateProfile)
		})

		r.With(limited).Post("/contact", h.createContact)
		r.With(limited, h.optionalUser).Post("/payment", h.createPayment)
		r.Get("/payment/{id}", h.getPayment)

		// admin
		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Get("/contacts", h.listContacts)
			r.Get("/contacts/stats", h.contactStats)
			r.Get("/contact/{id}", h.getContact)
			r.Patch("/contact/{id}", h.updateContact)
			r.Delete("/contact/{id}", h.deleteContact)

			r.Get("/payments", h.listPayments)
			r.Patch("/payment/{id}", h.updatePayment)
		})

	})

	return r
}
