package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/models"
	"shg-service/internal/service"
	"shg-service/pkg/utils"
)

// ContributionHandler handles contribution and payment requests
type ContributionHandler struct {
	contributionService service.ContributionService
	logger              *logrus.Logger
	config              *configs.Config
}

// NewContributionHandler creates a new ContributionHandler
func NewContributionHandler(contributionService service.ContributionService, logger *logrus.Logger, config *configs.Config) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contributionService,
		logger:              logger,
		config:              config,
	}
}

// GetCurrent handles listing the current period's contributions
func (h *ContributionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	current, err := h.contributionService.GetCurrent(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "contributions retrieved successfully", current)
}

// UpsertCurrent handles creating or updating a member's dues in the open period
func (h *ContributionHandler) UpsertCurrent(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.ContributionUpsert
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	contribution, err := h.contributionService.UpsertCurrent(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "contribution saved successfully", contribution)
}

// RecordPayment handles a partial payment update
func (h *ContributionHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	contributionID, err := pathID(r, "contributionId")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.PaymentUpdate
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	contribution, err := h.contributionService.RecordPayment(r.Context(), groupID, contributionID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payment recorded successfully", contribution)
}
