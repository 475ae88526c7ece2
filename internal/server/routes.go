package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

const maxResultsLimit = 100

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.recoverMiddleware)
	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/results", s.GetResults).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws", s.hub.HandleWebSocket(s.manager))

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("[recover] handler panicked")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"rooms":   s.manager.Rooms().Count(),
		"clients": s.hub.ClientCount(),
	}
	if s.db != nil {
		resp["database"] = s.db.Health()
	} else {
		resp["database"] = map[string]string{"status": "disabled"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	roomId := s.manager.Rooms().Joinable()

	if roomId != "" {
		// Found a joinable room - SUCCESS
		writeResponse(w, startTime, http.StatusOK, roomId)
		return
	}
	writeResponse(w, startTime, http.StatusNotFound, "No joinable rooms available")
}

// GetResults lists recently archived games, newest first.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	if s.db == nil {
		writeResponse(w, startTime, http.StatusNotFound, "archive disabled")
		return
	}

	limit := internal.DefaultResultsCap
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeResponse(w, startTime, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxResultsLimit)
	}

	games, err := s.db.RecentGames(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("[GetResults] failed to load games")
		writeResponse(w, startTime, http.StatusInternalServerError, "failed to load results")
		return
	}
	writeResponse(w, startTime, http.StatusOK, games)
}

// writeResponse wraps data in the timed Response envelope.
func writeResponse(w http.ResponseWriter, startTime int64, status int, data any) {
	endTime := time.Now().UnixMilli()
	writeJSON(w, status, internal.Response{
		StatusCode:    status,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          data,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}
