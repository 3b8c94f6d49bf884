package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/models"
	"shg-service/internal/service"
	"shg-service/pkg/utils"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService service.LoanService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, logger *logrus.Logger, config *configs.Config) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
		config:      config,
	}
}

// Create handles issuing a loan
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.LoanCreate
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	loan, err := h.loanService.Create(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "loan issued successfully", loan)
}

// GetAll handles listing a group's loans
func (h *LoanHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	loans, err := h.loanService.GetByGroupID(r.Context(), groupID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}
	if loans == nil {
		loans = []*models.Loan{}
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loans retrieved successfully", loans)
}

// Repay handles a loan repayment
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	var req models.LoanRepayment
	if err := decodeJSON(r, &req, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	result, err := h.loanService.Repay(r.Context(), groupID, &req)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "repayment recorded successfully", result)
}
