// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CUknot/fairmind/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

var (
	errMissingToken   = errors.New("missing bearer token")
	errMalformedToken = errors.New("malformed Authorization header")
)

// JWTAuth rejects requests without a valid session token. The token is read
// from the Authorization header or, for websocket upgrades that cannot set
// headers, from the "token" query parameter.
func JWTAuth(tokens *utils.TokenIssuer) gin.HandlerFunc {
	if tokens == nil {
		panic("TokenIssuer cannot be nil for JWTAuth middleware")
	}

	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			logrus.WithError(err).Debug("Auth middleware: no usable token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		userID, err := tokens.ParseToken(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errMalformedToken
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errMissingToken
}
