package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/miascience/quest/internal/content"
	"github.com/miascience/quest/internal/engine"
	"github.com/miascience/quest/internal/i18n"
	"github.com/miascience/quest/internal/model"
	"github.com/miascience/quest/internal/practice"
)

// recentLimit is how many history entries the history endpoint returns.
const recentLimit = 20

// Handler exposes the engine as a JSON API.
type Handler struct {
	engine *engine.Engine
}

// New creates a new Handler.
func New(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/weeks", h.handleWeeks)
	r.Get("/weeks/{weekID}", h.handleWeek)
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/missions", h.handleMissions)
	r.Get("/history", h.handleHistory)
	r.Get("/overview", h.handleOverview)
	r.Get("/practice", h.handleSession)
	r.Post("/practice/start", h.handleStart)
	r.Post("/practice/next", h.handleNext)
	r.Post("/practice/answer", h.handleAnswer)
}

type indexResponse struct {
	Title    string                  `json:"title"`
	Subjects []model.SubjectProgress `json:"subjects"`
	Missions []string                `json:"missions"`
	Overview model.Overview          `json:"overview"`
	Recent   []model.HistoryEntry    `json:"recent"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, indexResponse{
		Title:    i18n.T(ctx, "AppTitle"),
		Subjects: h.engine.Dashboard(ctx),
		Missions: h.engine.Missions(ctx),
		Overview: h.engine.Overview(),
		Recent:   h.engine.RecentHistory(recentLimit),
	})
}

func (h *Handler) handleWeeks(w http.ResponseWriter, r *http.Request) {
	subject := model.Subject(r.URL.Query().Get("subject"))
	if subject != "" && !subject.Valid() {
		writeError(w, http.StatusBadRequest, "unknown subject: "+string(subject))
		return
	}
	weeks := h.engine.Catalog().WeeksWithSubject(subject)
	if weeks == nil {
		weeks = []model.Week{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

type weekResponse struct {
	model.Week
	Subjects []model.Subject `json:"subjects"`
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := h.engine.Catalog().Week(chi.URLParam(r, "weekID"))
	if !ok {
		writeError(w, http.StatusNotFound, "week not found")
		return
	}
	writeJSON(w, http.StatusOK, weekResponse{Week: week, Subjects: content.Subjects(week)})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Dashboard(r.Context()))
}

func (h *Handler) handleMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Missions(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.RecentHistory(recentLimit)
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Overview())
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Session(r.Context()))
}

type startRequest struct {
	WeekID  string        `json:"weekId"`
	Subject model.Subject `json:"subject"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WeekID == "" || !req.Subject.Valid() {
		writeError(w, http.StatusBadRequest, "weekId and a known subject are required")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.StartPractice(r.Context(), req.WeekID, req.Subject))
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.NextQuestion(r.Context()))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var answer model.Answer
	if err := json.NewDecoder(r.Body).Decode(&answer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fb, err := h.engine.Submit(r.Context(), answer)
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, practice.ErrNoQuestion), errors.Is(err, practice.ErrAlreadyGraded):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.Error("submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, fb)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
