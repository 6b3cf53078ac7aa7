package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"clairon-backend/internal/handlers"
	"clairon-backend/internal/middleware"
)

func New(
	supabaseAuth *middleware.SupabaseAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	supportHandler *handlers.SupportHandler,
	journalHandler *handlers.JournalHandler,
	moodHandler *handlers.MoodHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Magic-link landing page
	r.Get("/auth/callback", authHandler.Callback)

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public, rate limited) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/magic-link", authHandler.MagicLink)
		})

		// ──── Support Chat ────
		r.Post("/support", supportHandler.Handle)

		// ──── Journal Routes ────
		r.Route("/journal", func(r chi.Router) {
			r.With(supabaseAuth.Optional).Post("/", journalHandler.Create)
			r.With(supabaseAuth.Middleware).Get("/", journalHandler.List)
		})

		// ──── Mood Routes ────
		r.Route("/mood", func(r chi.Router) {
			r.With(supabaseAuth.Optional).Post("/", moodHandler.Create)
			r.Get("/options", moodHandler.Options)
		})
	})

	return r
}
