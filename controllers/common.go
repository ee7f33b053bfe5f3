package controllers

import (
	"calorie-tracker/apperr"
	"calorie-tracker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RespondError writes err as {error, details}. Validation and configuration
// failures surface their own message; anything else gets the endpoint
// headline with the cause in details.
func RespondError(c *gin.Context, logger *logrus.Entry, headline string, err error) {
	status := apperr.HTTPStatus(err)
	response := structs.ErrorResponse{Error: apperr.MessageOf(err)}

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConfiguration:
	default:
		response.Error = headline
		response.Details = err.Error()
	}

	entry := logger.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"status": status,
		"kind":   string(apperr.KindOf(err)),
	})
	if status >= 500 {
		entry.Error(err.Error())
	} else {
		entry.Info(err.Error())
	}
	c.JSON(status, response)
}
