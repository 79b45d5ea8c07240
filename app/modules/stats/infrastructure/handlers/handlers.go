package statshandlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	statsservice "github.com/Kanchan-Club/seisan-api/app/modules/stats/application"
	"github.com/Kanchan-Club/seisan-api/app/shared/httpjson"
)

// StatsHandlers serves the stats HTTP API.
type StatsHandlers struct {
	service statsservice.Service
	logger  *slog.Logger
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(service statsservice.Service, logger *slog.Logger) *StatsHandlers {
	return &StatsHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the stats endpoints on r.
func (h *StatsHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/stats", func(r chi.Router) {
		r.Get("/members", h.HandleMemberNames)
		r.Route("/{member}", func(r chi.Router) {
			r.Get("/overview", h.HandleOverview)
			r.Get("/monthly", h.HandleMonthly)
			r.Get("/opponents", h.HandleOpponents)
			r.Get("/groups", h.HandleGroups)
			r.Get("/trend.png", h.HandleTrendChart)
		})
	})
}

func (h *StatsHandlers) HandleMemberNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.MemberNames(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httpjson.Respond(w, http.StatusOK, names)
}

func (h *StatsHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Overview(r.Context(), h.memberParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, stats)
}

func (h *StatsHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := h.service.Monthly(r.Context(), h.memberParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, months)
}

func (h *StatsHandlers) HandleOpponents(w http.ResponseWriter, r *http.Request) {
	opponents, err := h.service.Opponents(r.Context(), h.memberParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, opponents)
}

func (h *StatsHandlers) HandleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Groups(r.Context(), h.memberParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, groups)
}

func (h *StatsHandlers) HandleTrendChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.TrendChart(r.Context(), h.memberParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// memberParam returns the member name path segment. chi routes on the
// decoded URL path, so multibyte names arrive ready to use.
func (h *StatsHandlers) memberParam(r *http.Request) string {
	return chi.URLParam(r, "member")
}

func (h *StatsHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Stats request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}
