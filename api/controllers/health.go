package controllers

import (
	"context"
	"net/http"

	"github.com/wittyvishnu/starfashion-backend/api/responses"
	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StarFashion-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency and fails on the first one down.
func HealthReady(cfg *config.Config, logg *logger.Logger, probes map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StarFashion-Env", cfg.App.Env)
		for name, ping := range probes {
			if ping == nil {
				continue
			}
			if err := ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
