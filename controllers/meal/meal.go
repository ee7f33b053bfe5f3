package meal

import (
	"calorie-tracker/apperr"
	"calorie-tracker/controllers"
	"calorie-tracker/structs"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Store interface {
	Save(ctx context.Context, record structs.MealRecord) (structs.MealRecord, error)
	ListByDate(ctx context.Context, date string) ([]structs.MealRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

type MealController struct {
	store  Store
	logger *logrus.Entry
}

func NewMealController(store Store, logger *logrus.Entry) *MealController {
	return &MealController{store: store, logger: logger}
}

// List returns the meals logged on ?date=YYYY-MM-DD.
func (m *MealController) List(c *gin.Context) {
	meals, err := m.store.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		controllers.RespondError(c, m.logger, "Failed to fetch meals", err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (m *MealController) Create(c *gin.Context) {
	var record structs.MealRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		controllers.RespondError(c, m.logger, "Failed to create meal", apperr.Validation("Meal data is required"))
		return
	}
	// identity and partition belong to the store
	record.ID = ""
	record.Date = ""

	saved, err := m.store.Save(c.Request.Context(), record)
	if err != nil {
		controllers.RespondError(c, m.logger, "Failed to create meal", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (m *MealController) Delete(c *gin.Context) {
	if err := m.store.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		controllers.RespondError(c, m.logger, "Failed to delete meal", err)
		return
	}
	c.JSON(http.StatusOK, structs.SuccessResponse{Success: true})
}
