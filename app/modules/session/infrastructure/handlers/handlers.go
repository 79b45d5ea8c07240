package sessionhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessionservice "github.com/Kanchan-Club/seisan-api/app/modules/session/application"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/shared/httpjson"
)

// SessionHandlers serves the session HTTP API.
type SessionHandlers struct {
	service sessionservice.Service
	logger  *slog.Logger
}

// NewSessionHandlers creates a new SessionHandlers instance.
func NewSessionHandlers(service sessionservice.Service, logger *slog.Logger) *SessionHandlers {
	return &SessionHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the session endpoints on r. Listing requires a
// group_uuid query parameter.
func (h *SessionHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)
		r.Get("/", h.HandleListSessions)
		r.Route("/{sessionUUID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Post("/rounds", h.HandleAddRound)
			r.Put("/rounds/{roundUUID}", h.HandleUpdateRound)
			r.Delete("/rounds/{roundUUID}", h.HandleDeleteRound)
			r.Put("/chips", h.HandleUpdateChipCounts)
			r.Post("/expenses", h.HandleAddExpense)
			r.Delete("/expenses/{expenseUUID}", h.HandleDeleteExpense)
			r.Post("/settle", h.HandleSettleSession)
		})
	})
}

func (h *SessionHandlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionservice.CreateSessionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.service.CreateSession(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, info)
}

func (h *SessionHandlers) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	groupUUID, err := uuid.Parse(r.URL.Query().Get("group_uuid"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "group_uuid query parameter is required")
		return
	}

	infos, err := h.service.ListSessionsByGroup(r.Context(), groupUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if infos == nil {
		infos = []sessiondomain.SessionInfo{}
	}
	httpjson.Respond(w, http.StatusOK, infos)
}

func (h *SessionHandlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	info, err := h.service.GetSession(r.Context(), sessionUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, info)
}

type roundRequest struct {
	Scores []*int                  `json:"scores"`
	Tobi   *scoringdomain.TobiInfo `json:"tobi"`
}

func (h *SessionHandlers) HandleAddRound(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	round, err := h.service.AddRound(r.Context(), sessionUUID, req.Scores, req.Tobi)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, round)
}

func (h *SessionHandlers) HandleUpdateRound(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}
	roundUUID, err := uuid.Parse(chi.URLParam(r, "roundUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid round uuid")
		return
	}

	var req roundRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateRound(r.Context(), sessionUUID, roundUUID, req.Scores, req.Tobi); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandlers) HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}
	roundUUID, err := uuid.Parse(chi.URLParam(r, "roundUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid round uuid")
		return
	}

	if err := h.service.DeleteRound(r.Context(), sessionUUID, roundUUID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chipCountsRequest struct {
	Counts []*int `json:"counts"`
}

func (h *SessionHandlers) HandleUpdateChipCounts(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	var req chipCountsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateChipCounts(r.Context(), sessionUUID, req.Counts); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandlers) HandleAddExpense(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	var req sessionservice.ExpenseRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := h.service.AddExpense(r.Context(), sessionUUID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, expense)
}

func (h *SessionHandlers) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}
	expenseUUID, err := uuid.Parse(chi.URLParam(r, "expenseUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid expense uuid")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), sessionUUID, expenseUUID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandlers) HandleSettleSession(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.SettleSession(r.Context(), sessionUUID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": string(sessiondomain.StatusSettled)})
}

func (h *SessionHandlers) sessionUUIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionUUID, err := uuid.Parse(chi.URLParam(r, "sessionUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid session uuid")
		return uuid.Nil, false
	}
	return sessionUUID, true
}

func (h *SessionHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sessiondb.ErrNotFound),
		errors.Is(err, sessiondb.ErrRoundNotFound),
		errors.Is(err, sessiondb.ErrExpenseNotFound),
		errors.Is(err, groupdb.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sessionservice.ErrSessionSettled):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, sessionservice.ErrBadDate),
		errors.Is(err, sessionservice.ErrMemberCount),
		errors.Is(err, sessionservice.ErrUmaTooShort),
		errors.Is(err, sessionservice.ErrScoresLength),
		errors.Is(err, sessionservice.ErrNoActiveScores),
		errors.Is(err, sessionservice.ErrTobiInvalid),
		errors.Is(err, sessionservice.ErrChipsDisabled),
		errors.Is(err, sessionservice.ErrChipCountsLength),
		errors.Is(err, sessionservice.ErrExpenseAmount),
		errors.Is(err, sessionservice.ErrExpenseKind),
		errors.Is(err, sessionservice.ErrExpenseNoTargets),
		errors.Is(err, sessionservice.ErrUnknownMember),
		errors.Is(err, sessionservice.ErrDescriptionBlank):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Session request failed",
			slog.Any("error", err),
		)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
