package references

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stratpilot/stratpilot/internal/journey"
)

// RegisterRoutes mounts the citation listing route.
func RegisterRoutes(r chi.Router, sink *Sink) {
	r.Get("/api/sessions/{sessionId}/citations", handleList(sink))
}

func handleList(sink *Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		fw := journey.FrameworkID(r.URL.Query().Get("framework"))

		citations, err := sink.ListBySession(r.Context(), sessionID, fw)
		if err != nil {
			log.Printf("references: list citations: %v", err)
			http.Error(w, "failed to list citations", http.StatusInternalServerError)
			return
		}
		if citations == nil {
			citations = []Citation{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(citations)
	}
}
