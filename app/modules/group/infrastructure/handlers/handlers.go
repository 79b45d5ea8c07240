package grouphandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
	groupinvites "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/invites"
	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/shared/httpjson"
)

// GroupHandlers serves the group HTTP API.
type GroupHandlers struct {
	service groupservice.Service
	logger  *slog.Logger
}

// NewGroupHandlers creates a new GroupHandlers instance.
func NewGroupHandlers(service groupservice.Service, logger *slog.Logger) *GroupHandlers {
	return &GroupHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the group endpoints on r.
func (h *GroupHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/groups", func(r chi.Router) {
		r.Post("/", h.HandleCreateGroup)
		r.Get("/", h.HandleListGroups)
		r.Post("/join", h.HandleJoinGroup)
		r.Route("/{groupUUID}", func(r chi.Router) {
			r.Get("/", h.HandleGetGroup)
			r.Put("/name", h.HandleRenameGroup)
			r.Put("/members", h.HandleUpdateMembers)
			r.Post("/invite", h.HandleCreateInvite)
		})
	})
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (h *GroupHandlers) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.service.CreateGroup(ctx, req.Name, req.Members)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, info)
}

func (h *GroupHandlers) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if infos == nil {
		infos = []groupdomain.GroupInfo{}
	}
	httpjson.Respond(w, http.StatusOK, infos)
}

func (h *GroupHandlers) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupUUID, ok := h.groupUUIDParam(w, r)
	if !ok {
		return
	}

	info, err := h.service.GetGroup(r.Context(), groupUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, info)
}

type renameGroupRequest struct {
	Name string `json:"name"`
}

func (h *GroupHandlers) HandleRenameGroup(w http.ResponseWriter, r *http.Request) {
	groupUUID, ok := h.groupUUIDParam(w, r)
	if !ok {
		return
	}

	var req renameGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RenameGroup(r.Context(), groupUUID, req.Name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

type updateMembersRequest struct {
	Members []string `json:"members"`
}

func (h *GroupHandlers) HandleUpdateMembers(w http.ResponseWriter, r *http.Request) {
	groupUUID, ok := h.groupUUIDParam(w, r)
	if !ok {
		return
	}

	var req updateMembersRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateMembers(r.Context(), groupUUID, req.Members); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *GroupHandlers) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	groupUUID, ok := h.groupUUIDParam(w, r)
	if !ok {
		return
	}

	invite, err := h.service.CreateInvite(r.Context(), groupUUID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, invite)
}

type joinGroupRequest struct {
	Token      string `json:"token"`
	MemberName string `json:"member_name"`
}

func (h *GroupHandlers) HandleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.service.JoinGroup(r.Context(), req.Token, req.MemberName)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, info)
}

func (h *GroupHandlers) groupUUIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupUUID, err := uuid.Parse(chi.URLParam(r, "groupUUID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid group uuid")
		return uuid.Nil, false
	}
	return groupUUID, true
}

func (h *GroupHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, groupdb.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "group not found")
	case errors.Is(err, groupinvites.ErrExpiredToken):
		httpjson.Error(w, http.StatusGone, "invite expired")
	case errors.Is(err, groupinvites.ErrInvalidToken):
		httpjson.Error(w, http.StatusUnauthorized, "invalid invite")
	case errors.Is(err, groupservice.ErrNameRequired),
		errors.Is(err, groupservice.ErrNoMembers),
		errors.Is(err, groupservice.ErrDuplicateMember),
		errors.Is(err, groupservice.ErrBlankMember):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, groupservice.ErrMemberExists):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Group request failed",
			slog.Any("error", err),
		)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
