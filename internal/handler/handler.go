package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/metrics"
	"shg-service/internal/service"
	"shg-service/pkg/apperror"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
	Metrics  *metrics.Metrics
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	User         *UserHandler
	Group        *GroupHandler
	Loan         *LoanHandler
	Period       *PeriodHandler
	Contribution *ContributionHandler
	Report       *ReportHandler

	deps Dependencies
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		User:         NewUserHandler(deps.Services.User, deps.Logger, deps.Config),
		Group:        NewGroupHandler(deps.Services.Group, deps.Logger, deps.Config),
		Loan:         NewLoanHandler(deps.Services.Loan, deps.Logger, deps.Config),
		Period:       NewPeriodHandler(deps.Services.Period, deps.Logger, deps.Config),
		Contribution: NewContributionHandler(deps.Services.Contribution, deps.Logger, deps.Config),
		Report:       NewReportHandler(deps.Services.Report, deps.Logger, deps.Config),
		deps:         deps,
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return apperror.Validation("invalid request payload", err.Error())
	}
	return nil
}

// pathID parses a positive integer path variable
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid "+name, nil)
	}
	return id, nil
}
