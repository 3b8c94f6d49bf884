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

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *logrus.Logger, config *configs.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		config:      config,
	}
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var userReg models.UserRegistration
	if err := decodeJSON(r, &userReg, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	userID, err := h.userService.Register(r.Context(), &userReg)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "user registered successfully", map[string]interface{}{
		"userId": userID,
	})
}

// Login handles user login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.UserLogin
	if err := decodeJSON(r, &loginReq, false); err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	tokenResponse, err := h.userService.Login(r.Context(), &loginReq)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "login successful", tokenResponse)
}

// GetUser handles fetching the authenticated user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, h.logger, err)
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "user details retrieved successfully", user)
}
