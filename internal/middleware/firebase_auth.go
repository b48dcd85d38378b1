package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// ContextKeyFirebaseUID is the echo context key under which the verified
// Firebase UID of the acting user is stored.
const ContextKeyFirebaseUID = "firebaseUID"

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID
// tokens. Requests without a valid token are rejected before any handler
// runs, so no mutation can happen unauthenticated.
func FirebaseAuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			token, err := authClient.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			c.Set(ContextKeyFirebaseUID, token.UID)
			c.Set("firebaseToken", token)

			return next(c)
		}
	}
}

// OptionalFirebaseAuthMiddleware verifies a Firebase ID token when one is
// present but lets anonymous requests through. Read-only endpoints use it
// so unauthenticated viewers still see counts, just never a personal state.
func OptionalFirebaseAuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return next(c)
			}

			token, err := authClient.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				// Present but invalid credentials are still rejected.
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			c.Set(ContextKeyFirebaseUID, token.UID)
			c.Set("firebaseToken", token)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("Authorization header is missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return "", fmt.Errorf("Authorization header must be in Bearer format")
	}

	return tokenParts[1], nil
}
