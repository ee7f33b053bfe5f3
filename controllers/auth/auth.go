package auth

import (
	"calorie-tracker/enums"
	"calorie-tracker/structs"
	"calorie-tracker/utils"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Credentials is the single shared account plus cookie settings.
type Credentials struct {
	Username     string
	Password     string
	TokenSecret  string
	CookieSecure bool
	MaxAge       time.Duration
}

type AuthController struct {
	credentials Credentials
	logger      *logrus.Entry
}

func NewAuthController(credentials Credentials, logger *logrus.Entry) *AuthController {
	if credentials.MaxAge <= 0 {
		credentials.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthController{credentials: credentials, logger: logger}
}

func (a *AuthController) Login(c *gin.Context) {
	var param structs.LoginParam
	if err := c.ShouldBind(&param); err != nil {
		c.JSON(http.StatusBadRequest, structs.MessageResponse{Message: "Username and password are required"})
		return
	}

	if a.credentials.Username == "" || a.credentials.Password == "" || a.credentials.TokenSecret == "" {
		a.logger.Error("authentication credentials not configured")
		c.JSON(http.StatusInternalServerError, structs.MessageResponse{Message: "Server configuration error"})
		return
	}

	if !equal(param.Username, a.credentials.Username) || !equal(param.Password, a.credentials.Password) {
		a.logger.WithFields(logrus.Fields{"username": param.Username}).Info("login rejected")
		c.JSON(http.StatusUnauthorized, structs.MessageResponse{Message: "Invalid username or password"})
		return
	}

	token, err := utils.GenerateToken(a.credentials.TokenSecret, a.credentials.Username, a.credentials.MaxAge)
	if err != nil {
		a.logger.WithError(err).Error("sign session token")
		c.JSON(http.StatusInternalServerError, structs.MessageResponse{Message: "Internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(enums.AuthCookieName, token, int(a.credentials.MaxAge/time.Second), "/", "", a.credentials.CookieSecure, true)
	c.JSON(http.StatusOK, structs.MessageResponse{Message: "Authentication successful"})
}

func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(enums.AuthCookieName, "", -1, "/", "", a.credentials.CookieSecure, true)
	c.JSON(http.StatusOK, structs.MessageResponse{Message: "Logged out successfully"})
}

func equal(given, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
