package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/c4gt/bounce/internal/handlers"
	"github.com/c4gt/bounce/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under /api
type Handlers struct {
	Auth          *handlers.AuthHandler
	Discussions   *handlers.DiscussionHandler
	LevelComments *handlers.LevelCommentHandler
}

// RegisterRoutes registers all application routes under /api
func RegisterRoutes(router chi.Router, h Handlers, rateLimitConfig middleware.RateLimitConfig) {
	// Endpoints that send mail or check passwords are rate limited per client
	limited := middleware.RateLimitByIP(rateLimitConfig)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/send-otp", h.Auth.SendOTP)
			r.Post("/verify-otp", h.Auth.VerifyOTP)
			r.With(limited).Post("/login", h.Auth.Login)
			r.With(limited).Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Get("/check-email", h.Auth.CheckEmail)
			r.Get("/user/{email}", h.Auth.GetUser)
		})

		r.Route("/discussions", func(r chi.Router) {
			r.Get("/", h.Discussions.List)
			r.Post("/", h.Discussions.Create)

			// Static segments win over {id} in chi
			r.Post("/comments", h.Discussions.AddComment)
			r.Delete("/comments/{id}", h.Discussions.DeleteComment)

			r.Get("/{id}", h.Discussions.Get)
			r.Delete("/{id}", h.Discussions.Delete)
			r.Get("/{id}/comments", h.Discussions.ListComments)
		})

		r.Route("/level-comments", func(r chi.Router) {
			r.Post("/", h.LevelComments.Create)
			r.Get("/{id}", h.LevelComments.ListByLevel)
			r.Delete("/{id}", h.LevelComments.Delete)
		})
	})
}
