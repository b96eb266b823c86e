// Package httpapi binds the reconciliation engine and feed importer to
// the calendar API the web front-end talks to.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/astropret/rentcal/internal"
	"github.com/astropret/rentcal/internal/reconcile"
)

type Handler struct {
	engine   *reconcile.Engine
	importer *reconcile.Importer

	// adminToken guards mutations the way the back-office role check did;
	// empty disables the guard for local development.
	adminToken string
}

func NewHandler(engine *reconcile.Engine, importer *reconcile.Importer, adminToken string) *Handler {
	return &Handler{
		engine:     engine,
		importer:   importer,
		adminToken: adminToken,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/calendar/events", h.events)
	mux.HandleFunc("/api/calendar/create", h.create)
	mux.HandleFunc("/api/calendar/update", h.update)
	mux.HandleFunc("/api/calendar/delete", h.deleteEvent)
	mux.HandleFunc("/api/calendar/import", h.importFeed)
	mux.HandleFunc("/healthz", healthz)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	events, err := h.engine.MergedEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type eventRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
}

func (r eventRequest) input() (reconcile.EventInput, error) {
	if strings.TrimSpace(r.Title) == "" {
		return reconcile.EventInput{}, errors.New("missing title")
	}
	start, err := parseTime(r.Start)
	if err != nil {
		return reconcile.EventInput{}, errors.New("invalid start date")
	}
	end, err := parseTime(r.End)
	if err != nil {
		return reconcile.EventInput{}, errors.New("invalid end date")
	}
	return reconcile.EventInput{
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    start,
		EndsAt:      end,
		AllDay:      r.AllDay,
	}, nil
}

type mutationResponse struct {
	Success  bool   `json:"success"`
	LocalOK  bool   `json:"localOk"`
	RemoteOK bool   `json:"remoteOk"`
	Message  string `json:"message"`
}

func newMutationResponse(res reconcile.MutationResult) mutationResponse {
	return mutationResponse{
		Success:  res.LocalOK || res.RemoteOK,
		LocalOK:  res.LocalOK,
		RemoteOK: res.RemoteOK,
		Message:  res.Message,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMutationResponse(res))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ref, err := internal.ParseEventRef(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.Update(r.Context(), ref, in)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMutationResponse(res))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ref, err := internal.ParseEventRef(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	res, err := h.engine.Delete(r.Context(), ref)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMutationResponse(res))
}

func (h *Handler) importFeed(w http.ResponseWriter, r *http.Request) {
	if !h.admin(w, r) {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing feed url")
		return
	}

	// The importer never fails past its boundary; a bad feed comes back
	// as a structured result.
	writeJSON(w, http.StatusOK, h.importer.ImportURL(r.Context(), req.URL))
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return false
	}
	if h.adminToken == "" {
		return true
	}
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if auth != h.adminToken {
		writeError(w, http.StatusUnauthorized, "missing or invalid admin token")
		return false
	}
	return true
}

func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrNotEditable):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, reconcile.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseTime accepts RFC 3339 as well as the zone-less form the calendar
// front-end sends.
func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", v, time.Local)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
