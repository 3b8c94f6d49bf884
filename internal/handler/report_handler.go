package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/service"
	"shg-service/pkg/utils"
)

// ReportHandler handles reporting requests
type ReportHandler struct {
	reportService service.ReportService
	logger        *logrus.Logger
	config        *configs.Config
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *logrus.Logger, config *configs.Config) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
		config:        config,
	}
}

// GetSummary handles the group dashboard summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	summary, err := h.reportService.GetSummary(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "summary retrieved successfully", summary)
}

// PeriodXML handles exporting a period report as XML
func (h *ReportHandler) PeriodXML(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.reportService.PeriodReportXML(r.Context(), groupID, periodID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		h.logger.WithError(err).Warn("failed to write period report")
	}
}
