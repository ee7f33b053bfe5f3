package middlewares

import (
	"calorie-tracker/enums"
	"calorie-tracker/structs"
	"calorie-tracker/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware admits requests carrying a valid auth_token cookie and
// answers everything else with 401.
func AuthMiddleware(secret string, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logger.Error("auth.token_secret is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, structs.ErrorResponse{Error: "Server configuration error"})
			return
		}

		tokenString, err := c.Cookie(enums.AuthCookieName)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, structs.ErrorResponse{Error: "Authentication required"})
			return
		}

		subject, err := utils.VerifyToken(secret, tokenString)
		if err != nil {
			logger.WithFields(logrus.Fields{"path": c.Request.URL.Path}).Debug("rejected session token: " + err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, structs.ErrorResponse{Error: "Invalid or expired session"})
			return
		}

		c.Set("username", subject)
		c.Next()
	}
}
