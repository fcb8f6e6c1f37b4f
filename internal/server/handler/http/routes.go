package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/daybook/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	Entries *EntryHandler
	Stats   *StatsHandler
	Export  *ExportHandler
}

// RouterOptions configures the cross-cutting middlewares.
type RouterOptions struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// Limiter, when set, rate limits every request by client IP.
	Limiter *middleware.RateLimiter
	// Timeout bounds each request. Zero disables it.
	Timeout time.Duration
}

// NewRouter constructs and returns an HTTP handler that serves
// the journal API.
//
// Routes:
//
//	GET    /healthz
//	POST   /api/register, /api/login, /api/logout
//	GET    /api/session
//	GET    /api/entries             (session)
//	POST   /api/entries             (session)
//	POST   /api/entries/today       (session)
//	GET    /api/entries/{id}        (session)
//	PUT    /api/entries/{id}        (session)
//	DELETE /api/entries/{id}        (session)
//	GET    /api/stats               (session)
//	GET    /api/export              (session)
//	GET    /api/account             (session)
//	PUT    /api/account/username    (session)
//	PUT    /api/account/pin         (session)
//
// Middleware chain (applied in order): request id, real ip, request logging,
// panic recovery, CORS, rate limiting, JSON content type enforcement.
func NewRouter(
	h Handlers,
	resolver middleware.TokenResolver,
	logger *zap.Logger,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}
	if opts.Timeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.Timeout))
	}

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/session", h.Auth.Session)

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(resolver))

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", h.Entries.List)
				r.Post("/", h.Entries.Create)
				r.Post("/today", h.Entries.CreateToday)
				r.Get("/{id}", h.Entries.Get)
				r.Put("/{id}", h.Entries.Update)
				r.Delete("/{id}", h.Entries.Delete)
			})

			r.Get("/stats", h.Stats.Get)
			r.Get("/export", h.Export.Export)

			r.Get("/account", h.Auth.Account)
			r.Put("/account/username", h.Auth.UpdateUsername)
			r.Put("/account/pin", h.Auth.UpdatePin)
		})
	})

	return r
}
