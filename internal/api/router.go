package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/clientip"
	"github.com/linksphinx/licensekit/pkg/fulfillment"
	"github.com/linksphinx/licensekit/pkg/httpserver"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/logger"
	"github.com/linksphinx/licensekit/pkg/ratelimiter"
	"github.com/linksphinx/licensekit/pkg/requestid"
)

// Deps are the collaborators of the HTTP surface.
// Limiter and Checks are optional.
type Deps struct {
	Config      Config
	Fulfillment *fulfillment.Service
	Issuer      *issuance.Issuer
	Providers   *billing.Registry
	Limiter     *ratelimiter.Limiter
	Checks      map[string]httpserver.Check
	Logger      *slog.Logger
}

type server struct {
	cfg       Config
	svc       *fulfillment.Service
	issuer    *issuance.Issuer
	providers *billing.Registry
	log       *slog.Logger
}

// NewRouter builds the HTTP handler. Panics if a required dependency is nil.
func NewRouter(d Deps) http.Handler {
	if d.Fulfillment == nil || d.Issuer == nil || d.Providers == nil {
		panic("api: fulfillment, issuer and providers are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	s := &server{
		cfg:       d.Config,
		svc:       d.Fulfillment,
		issuer:    d.Issuer,
		providers: d.Providers,
		log:       d.Logger.With(logger.Component("api")),
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.New(d.Config.ProxyHeaders...).Middleware)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "Not Found"})
	})

	r.Get("/health/live", httpserver.HealthCheckHandler(s.log, nil))
	r.Get("/health/ready", httpserver.HealthCheckHandler(s.log, d.Checks))

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(d.Config.MaxBodyBytes))

		r.Post("/{provider}-webhook", s.handleWebhook)
		r.Get("/success", s.handleSuccess)

		r.Group(func(r chi.Router) {
			r.Use(corsHandler(d.Config.AllowedOrigins))
			r.Use(preflight)
			if d.Limiter != nil {
				r.Use(ratelimiter.Middleware(d.Limiter,
					ratelimiter.Composite(ratelimiter.ByIP, ratelimiter.ByRoute),
					ratelimiter.WithLogger(s.log),
				))
			}

			r.Options("/verify-license", func(http.ResponseWriter, *http.Request) {})
			r.Post("/verify-license", s.handleVerify)
			r.Options("/resend-license", func(http.ResponseWriter, *http.Request) {})
			r.Post("/resend-license", s.handleResend)
		})
	})

	return r
}
