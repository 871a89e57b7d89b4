package handler

import (
	"net/http"

	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/llm"
	"github.com/sinbc2003/cluade2/internal/repository/mongo"
	"github.com/sinbc2003/cluade2/internal/repository/postgres"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including datastore connectivity
func ReadyCheck(docs *mongo.DB, usage *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := docs.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "document store not ready")
			return
		}
		if usage != nil {
			if err := usage.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "usage store not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListModels returns the model ids served by configured providers
func ListModels(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"models": router.Models(),
		})
	}
}
