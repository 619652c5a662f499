package controllers

import (
	"context"
	"net/http"

	"github.com/buildtrack/buildtrack-backend/api/responses"
	"github.com/buildtrack/buildtrack-backend/pkg/config"
	pkgerrors "github.com/buildtrack/buildtrack-backend/pkg/errors"
	"github.com/buildtrack/buildtrack-backend/pkg/logger"
)

const envHeader = "X-BuildTrack-Env"

// DependencyPinger is satisfied by the database and redis clients.
type DependencyPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every registered dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]DependencyPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
						WithDetails(map[string]string{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
