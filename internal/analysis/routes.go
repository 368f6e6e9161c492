package analysis

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the analysis version API routes. Routes are
// registered flat because other feature packages share the /api/sessions and
// /api/versions prefixes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/sessions/{sessionId}/versions", handleList(store))
	r.Get("/api/sessions/{sessionId}/versions/{number}", handleGetVersion(store))
	r.Patch("/api/sessions/{sessionId}/versions/{number}/analysis", handlePatchAnalysis(store))
	r.Put("/api/sessions/{sessionId}/versions/{number}/decisions", handlePutDecisions(store))
	r.Get("/api/versions/{id}", handleGetByID(store))
	r.Put("/api/versions/{id}/selected-decisions", handlePutSelected(store))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		versions, err := store.ListBySession(r.Context(), sessionID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if versions == nil {
			versions = []*Version{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(versions)
	}
}

func handleGetVersion(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil {
			http.Error(w, `{"error":"invalid version number"}`, http.StatusBadRequest)
			return
		}

		v, err := store.GetVersion(r.Context(), sessionID, number)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if v == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		v, err := store.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if v == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func handlePatchAnalysis(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil {
			http.Error(w, `{"error":"invalid version number"}`, http.StatusBadRequest)
			return
		}

		var incoming map[string]any
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		merged, err := store.MergeAnalysisData(r.Context(), sessionID, number, incoming)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(merged)
	}
}

func handlePutDecisions(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		number, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil {
			http.Error(w, `{"error":"invalid version number"}`, http.StatusBadRequest)
			return
		}

		var decisions map[string]any
		if err := json.NewDecoder(r.Body).Decode(&decisions); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := store.SetDecisions(r.Context(), sessionID, number, decisions); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "saved"})
	}
}

func handlePutSelected(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var selected map[string]any
		if err := json.NewDecoder(r.Body).Decode(&selected); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := store.SetSelectedDecisions(r.Context(), id, selected); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "saved"})
	}
}
