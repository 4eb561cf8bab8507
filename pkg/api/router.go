package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Defaults used when Options leaves the lookup limits unset.
const (
	DefaultLookupRate  = 5
	DefaultLookupBurst = 10
)

type Options struct {
	// LookupRate and LookupBurst bound the number of roll lookups served per
	// second across all clients.
	LookupRate  float64
	LookupBurst int

	// Users maps basic auth user names to passwords.
	Users map[string]string
	// IdentityHeader names a header carrying the signed in user, set by a
	// fronting proxy. It takes precedence over Users.
	IdentityHeader string
}

func (o Options) withDefaults() Options {
	if o.LookupRate <= 0 {
		o.LookupRate = DefaultLookupRate
	}
	if o.LookupBurst <= 0 {
		o.LookupBurst = DefaultLookupBurst
	}
	return o
}

// GetRouter initialises a new http router and applies all routes
func GetRouter(svc Collector, opts Options) http.Handler {
	opts = opts.withDefaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	limiter := rate.NewLimiter(rate.Limit(opts.LookupRate), opts.LookupBurst)

	auth := authenticate(opts)
	if auth == nil {
		log.Warn("No users or identity header configured, serving without sign in")
	}

	return applyRoutes(r, newHandler(svc), auth, rateLimit(limiter))
}

func applyRoutes(r chi.Router, h *handler, auth, limit func(http.Handler) http.Handler) chi.Router {
	r.Get("/healthz", h.getHealth)

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}

		r.Get("/", h.getIndex)
		r.With(limit).Post("/lookup", h.postLookup)
		r.Post("/collect", h.postCollect)

		r.Route("/api", func(r chi.Router) {
			r.Get("/spreadsheet", h.getSpreadsheet)
			r.Get("/sheets", h.getSheets)
			r.With(limit).Get("/sheets/{sheet}/students/{suffix}", h.getStudent)
			r.Post("/sheets/{sheet}/rows/{row}/collect", h.postCollectRow)
		})
	})

	return r
}
