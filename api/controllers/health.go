package controllers

import (
	"net/http"

	"github.com/ovenlight/crumb-checkout/api/responses"
	"github.com/ovenlight/crumb-checkout/pkg/config"
	pkgerrors "github.com/ovenlight/crumb-checkout/pkg/errors"
	"github.com/ovenlight/crumb-checkout/pkg/logger"
	"github.com/ovenlight/crumb-checkout/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Crumb-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the optional redis dependency. The upstream
// storefront is deliberately not probed here: checkout stays ready and
// degrades to local estimates when the storefront is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Crumb-Env", cfg.App.Env)

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
