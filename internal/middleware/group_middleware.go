package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"shg-service/internal/models"
	"shg-service/pkg/utils"
)

// GroupAuthorizer resolves a group the user may manage
type GroupAuthorizer interface {
	Authorize(ctx context.Context, groupID, userID int) (*models.Group, error)
}

// GroupAccessMiddleware restricts a {id} group route to the group's leader
func GroupAccessMiddleware(groups GroupAuthorizer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			groupID, err := strconv.Atoi(mux.Vars(r)["id"])
			if err != nil || groupID <= 0 {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid group ID")
				return
			}

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if _, err := groups.Authorize(r.Context(), groupID, userID); err != nil {
				utils.RespondWithAppError(w, logger, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
