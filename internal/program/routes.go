package program

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts program generation routes.
func RegisterRoutes(r chi.Router, manager *Manager) {
	r.Post("/api/versions/{id}/program", handleStart(manager))
	r.Get("/api/program-jobs/{jobId}", handleGetJob(manager))
	r.Get("/api/sessions/{sessionId}/program-job", handleGetSessionJob(manager))
}

func handleStart(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		versionID := chi.URLParam(r, "id")
		job, err := manager.Start(r.Context(), versionID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(job)
	}
}

func handleGetJob(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := manager.Get(chi.URLParam(r, "jobId"))
		if job == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job)
	}
}

func handleGetSessionJob(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := manager.GetBySession(chi.URLParam(r, "sessionId"))
		if job == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job)
	}
}
