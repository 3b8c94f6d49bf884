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

// PeriodHandler handles period lifecycle requests
type PeriodHandler struct {
	periodService service.PeriodService
	logger        *logrus.Logger
	config        *configs.Config
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periodService service.PeriodService, logger *logrus.Logger, config *configs.Config) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
		logger:        logger,
		config:        config,
	}
}

// Open handles opening a new period. The body is optional.
func (h *PeriodHandler) Open(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.PeriodOpenRequest
	if err := decodeJSON(r, &req, true); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	period, err := h.periodService.Open(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "period opened successfully", period)
}

// GetAll handles listing a group's periods
func (h *PeriodHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	periods, err := h.periodService.GetByGroupID(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if periods == nil {
		periods = []*models.Period{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "periods retrieved successfully", periods)
}

// GetCurrent handles fetching the open period
func (h *PeriodHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	period, err := h.periodService.GetCurrent(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "current period retrieved successfully", period)
}

// CloseCurrent handles closing the open period
func (h *PeriodHandler) CloseCurrent(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	userID, req, ok := h.closeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.periodService.CloseCurrent(r.Context(), groupID, userID, req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "period closed successfully", result)
}

// Close handles closing a specific period
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	periodID, err := pathID(r, "periodId")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	userID, req, ok := h.closeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.periodService.Close(r.Context(), groupID, periodID, userID, req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "period closed successfully", result)
}

func (h *PeriodHandler) closeRequest(w http.ResponseWriter, r *http.Request) (int, *models.PeriodCloseRequest, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return 0, nil, false
	}

	var req models.PeriodCloseRequest
	if err := decodeJSON(r, &req, true); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return 0, nil, false
	}

	return userID, &req, true
}
