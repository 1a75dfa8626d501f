// Package httpapi serves the round history as read-only JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"redlight_tui/internal/history"
)

// Store is the part of the history repository the API reads.
type Store interface {
	GetAll() ([]history.Record, error)
	GetByID(id string) (*history.Record, error)
	Stats() (history.Stats, error)
}

type RoundsHandler struct {
	store Store
}

func NewRoundsHandler(store Store) *RoundsHandler {
	return &RoundsHandler{store: store}
}

func (h *RoundsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.stats)
	r.Route("/rounds", func(r chi.Router) {
		r.Get("/", h.listRounds)
		r.Get("/{id}", h.getRound)
	})
}

func (h *RoundsHandler) listRounds(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.GetAll()
	if err != nil {
		serverError(w, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RoundsHandler) getRound(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetByID(chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RoundsHandler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Stats()
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	log.Printf("httpapi: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func NewRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// The TUI owns stdout, so request lines go wherever the std logger points.
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	NewRoundsHandler(store).RegisterRoutes(r)
	return r
}

func NewServer(addr string, store Store) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(store),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
