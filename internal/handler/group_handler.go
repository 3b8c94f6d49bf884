package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/middleware"
	"shg-service/internal/models"
	"shg-service/internal/service"
	"shg-service/pkg/utils"
)

// GroupHandler handles group, member and late fine rule requests
type GroupHandler struct {
	groupService service.GroupService
	logger       *logrus.Logger
	config       *configs.Config
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService service.GroupService, logger *logrus.Logger, config *configs.Config) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
		config:       config,
	}
}

// Create handles group creation. The caller becomes the leader.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.GroupCreate
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	group, err := h.groupService.Create(r.Context(), userID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "group created successfully", group)
}

// GetAll handles listing the groups the caller leads
func (h *GroupHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	groups, err := h.groupService.GetByLeaderID(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "groups retrieved successfully", groups)
}

// GetByID handles fetching a group
func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	group, err := h.groupService.GetByID(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "group retrieved successfully", group)
}

// Update handles a partial settings update
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.GroupUpdate
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	group, err := h.groupService.Update(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "group updated successfully", group)
}

// AddMember handles adding a member
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.MemberCreate
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	member, err := h.groupService.AddMember(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "member added successfully", member)
}

// GetMembers handles listing members
func (h *GroupHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	members, err := h.groupService.GetMembers(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []*models.Member{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "members retrieved successfully", members)
}

// GetLateFineRule handles fetching the late fine rule
func (h *GroupHandler) GetLateFineRule(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	rule, err := h.groupService.GetLateFineRule(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "late fine rule retrieved successfully", rule)
}

// SetLateFineRule handles replacing the late fine rule
func (h *GroupHandler) SetLateFineRule(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.LateFineRuleInput
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	rule, err := h.groupService.SetLateFineRule(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "late fine rule saved successfully", rule)
}
