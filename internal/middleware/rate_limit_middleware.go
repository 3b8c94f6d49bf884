package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"shg-service/pkg/utils"
)

// RateLimitMiddleware allows requestsPerMinute per caller. Authenticated
// callers are keyed by user, everyone else by client IP.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(requestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + strconv.Itoa(userID), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
