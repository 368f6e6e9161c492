package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stratpilot/stratpilot/internal/journey"
	"github.com/stratpilot/stratpilot/internal/stream"
)

// RegisterRoutes mounts journey orchestration routes: starting sessions,
// executing them with NDJSON progress, and subscribing over websocket.
func RegisterRoutes(r chi.Router, o *Orchestrator, streamer *stream.Streamer, heartbeat time.Duration) {
	r.Route("/api/journeys", func(r chi.Router) {
		r.Get("/", handleListJourneys(o))
		r.Post("/start", handleStart(o))
	})
	r.Get("/api/sessions/{sessionId}", handleGetSession(o))
	r.Post("/api/sessions/{sessionId}/execute", handleExecute(o, streamer, heartbeat))
	r.Get("/api/sessions/{sessionId}/ws", stream.WebSocketHandler(streamer))
}

func handleListJourneys(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs := o.journeys.All()
		if defs == nil {
			defs = []journey.Definition{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(defs)
	}
}

func handleStart(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.UnderstandingID == "" || req.JourneyType == "" {
			http.Error(w, `{"error":"understanding_id and journey_type are required"}`, http.StatusBadRequest)
			return
		}

		result, err := o.StartJourney(r.Context(), req)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, ErrUnknownJourney), errors.Is(err, ErrJourneyUnavailable):
				status = http.StatusBadRequest
			case errors.Is(err, ErrUnderstandingNotFound):
				status = http.StatusNotFound
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	}
}

func handleGetSession(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionId")
		sess, err := o.sessions.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess)
	}
}

// handleExecute streams the execution as NDJSON. The response stays open for
// the whole run; progress also fans out to websocket subscribers via the
// streamer.
func handleExecute(o *Orchestrator, streamer *stream.Streamer, heartbeat time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		opts := ExecuteOptions{Force: r.URL.Query().Get("force") == "true"}

		ch, err := stream.NewChannel(w, heartbeat)
		if err != nil {
			http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
			return
		}
		defer ch.Close()

		// A disconnecting client stops receiving events but must not abort
		// the execution; the channel absorbs publishes after disconnect.
		ctx := context.WithoutCancel(r.Context())
		pub := stream.Multi(ch, streamer.SessionPublisher(sessionID))
		if err := o.ExecuteJourney(ctx, sessionID, opts, pub); err != nil {
			// The terminal error event already went out on the stream.
			log.Printf("orchestrator: execute %s: %v", sessionID, err)
		}
	}
}
