package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ovenlight/crumb-checkout/api/controllers"
	checkoutcontrollers "github.com/ovenlight/crumb-checkout/api/controllers/checkout"
	"github.com/ovenlight/crumb-checkout/api/middleware"
	checkoutsvc "github.com/ovenlight/crumb-checkout/internal/checkout"
	"github.com/ovenlight/crumb-checkout/pkg/config"
	"github.com/ovenlight/crumb-checkout/pkg/logger"
	pkgredis "github.com/ovenlight/crumb-checkout/pkg/redis"
)

// RouterParams carries everything the router wires together. Redis is
// optional: without it the placement endpoint simply loses replay
// protection on the edge (the upstream Idempotency-Key still guards it).
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *checkoutsvc.Registry
	Redis    *pkgredis.Client
	PromReg  *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	var redisP pkgredis.Pinger
	if p.Redis != nil {
		redisP = p.Redis
	}

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, redisP))
	})

	if p.PromReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.PromReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(p.Logger))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/calculate", checkoutcontrollers.Calculate(p.Registry, p.Logger))
			r.Post("/promo", checkoutcontrollers.PromoApply(p.Registry, p.Logger))
			r.Delete("/promo", checkoutcontrollers.PromoRemove(p.Registry, p.Logger))
		})

		r.Post("/branches/availability", checkoutcontrollers.BranchAvailability(p.Registry, p.Logger))

		r.Group(func(r chi.Router) {
			if p.Redis != nil {
				r.Use(middleware.Idempotency(p.Redis, p.Logger))
			}
			r.Post("/orders", checkoutcontrollers.PlaceOrder(p.Registry, p.Logger))
		})
	})

	return r
}
