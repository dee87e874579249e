package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/neexbeast/citycast/internal/results"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	screen  ResultsScreen
	history HistoryReader
	pages   *pages
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(screen ResultsScreen, history HistoryReader, log *slog.Logger) *Handlers {
	return &Handlers{
		screen:  screen,
		history: history,
		pages:   mustParsePages(),
		log:     log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetWeather handles GET /api/v1/weather?city=.
// Ready → 200 with the view. Error → 404 with the view. Superseded → 409.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city is required"})
		return
	}

	view, err := h.screen.Refresh(r.Context(), ClientFromContext(r.Context()), city)
	if err != nil {
		if errors.Is(err, results.ErrSuperseded) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "superseded by a newer search"})
			return
		}
		h.log.Error("refresh failed", "city", city, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	status := http.StatusOK
	if view.State == results.StateError {
		status = http.StatusNotFound
	}
	writeJSON(w, status, view)
}

// GetHistory handles GET /api/v1/history.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.history.Load(r.Context(), ClientFromContext(r.Context())))
}

// DeleteHistory handles DELETE /api/v1/history.
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	client := ClientFromContext(r.Context())
	if _, _, err := h.screen.ClearHistory(r.Context(), client); err != nil {
		h.log.Error("clear history failed", "client", client, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear history"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks history backend connectivity.
func HealthHandlerFunc(backend Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := backend.Ping(ctx); err != nil {
			log.Error("health check: history backend ping failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "history": "error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "history": "ok"})
	}
}
