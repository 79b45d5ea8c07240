package settlementhandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	settlementservice "github.com/Kanchan-Club/seisan-api/app/modules/settlement/application"
	"github.com/Kanchan-Club/seisan-api/app/shared/httpjson"
)

// SettlementHandlers serves the settlement HTTP API.
type SettlementHandlers struct {
	service settlementservice.Service
	logger  *slog.Logger
}

// NewSettlementHandlers creates a new SettlementHandlers instance.
func NewSettlementHandlers(service settlementservice.Service, logger *slog.Logger) *SettlementHandlers {
	return &SettlementHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the settlement endpoints on r.
func (h *SettlementHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/settlement/{sessionUUID}", func(r chi.Router) {
		r.Get("/", h.HandleGetBreakdown)
		r.Get("/text", h.HandleGetShareText)
		r.Get("/export", h.HandleExportWorkbook)
	})
}

func (h *SettlementHandlers) HandleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	breakdown, err := h.service.GetBreakdown(r.Context(), sessionUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, breakdown)
}

func (h *SettlementHandlers) HandleGetShareText(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	text, err := h.service.RenderShareText(r.Context(), sessionUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *SettlementHandlers) HandleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	sessionUUID, ok := h.sessionUUIDParam(w, r)
	if !ok {
		return
	}

	data, err := h.service.ExportWorkbook(r.Context(), sessionUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="settlement-%s.xlsx"`, sessionUUID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *SettlementHandlers) sessionUUIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionUUID, err := uuid.Parse(chi.URLParam(r, "sessionUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid session uuid")
		return uuid.Nil, false
	}
	return sessionUUID, true
}

func (h *SettlementHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sessiondb.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "session not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "Settlement request failed",
		slog.Any("error", err),
	)
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}
