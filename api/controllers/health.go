package controllers

import (
	"net/http"

	"github.com/nhatminhle/fashio-backend/api/responses"
	"github.com/nhatminhle/fashio-backend/pkg/config"
	"github.com/nhatminhle/fashio-backend/pkg/db"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
	"github.com/nhatminhle/fashio-backend/pkg/logger"
	pkgredis "github.com/nhatminhle/fashio-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fashio-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fashio-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP == nil {
			checks["database"] = "unconfigured"
			healthy = false
		} else if err := dbP.Ping(r.Context()); err != nil {
			logg.Error(r.Context(), "database ping failed", err)
			checks["database"] = "down"
			healthy = false
		} else {
			checks["database"] = "up"
		}

		if redisP == nil {
			checks["redis"] = "unconfigured"
			healthy = false
		} else if err := redisP.Ping(r.Context()); err != nil {
			logg.Error(r.Context(), "redis ping failed", err)
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
