package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"shg-service/pkg/utils"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
)

// WithUserID returns a copy of ctx carrying the authenticated user ID
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user ID stored by AuthMiddleware
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// AuthMiddleware checks if the request has a valid JWT token
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "no authorization header provided")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, ok := claims["user_id"]
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing user_id claim")
				return
			}

			// JSON numbers decode as float64
			userIDFloat, ok := userID.(float64)
			if !ok || userIDFloat <= 0 {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: user_id has wrong type")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), int(userIDFloat))))
		})
	}
}
