package meal

import (
	"calorie-tracker/database"
	mealService "calorie-tracker/services/meal"
	"calorie-tracker/structs"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	store := mealService.NewMealService(db, mealService.WithLocation(time.UTC), mealService.WithLogger(entry))
	controller := NewMealController(store, entry)

	engine := gin.New()
	engine.GET("/meals", controller.List)
	engine.POST("/meals", controller.Create)
	engine.DELETE("/meals/:id", controller.Delete)
	return engine
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateListDelete(t *testing.T) {
	engine := newEngine(t)

	w := do(engine, http.MethodPost, "/meals", `{
		"id": "client-chosen",
		"description": "Oatmeal",
		"nutrition": {"calories": 150, "protein": 5, "carbs": 27, "fat": 3},
		"timestamp": "2024-03-15T08:00:00Z"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created structs.MealRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.Equal(t, "2024-03-15", created.Date)

	w = do(engine, http.MethodGet, "/meals?date=2024-03-15", "")
	require.Equal(t, http.StatusOK, w.Code)
	var meals []structs.MealRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meals))
	require.Len(t, meals, 1)
	assert.Equal(t, created.ID, meals[0].ID)
	assert.Equal(t, 150.0, *meals[0].Nutrition.Calories)

	w = do(engine, http.MethodDelete, "/meals/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// deleting again still succeeds
	w = do(engine, http.MethodDelete, "/meals/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodGet, "/meals?date=2024-03-15", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListEmptyDay(t *testing.T) {
	engine := newEngine(t)

	w := do(engine, http.MethodGet, "/meals?date=2024-01-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListRequiresDate(t *testing.T) {
	engine := newEngine(t)

	w := do(engine, http.MethodGet, "/meals", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Date parameter is required")

	w = do(engine, http.MethodGet, "/meals?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRejectsBadBody(t *testing.T) {
	engine := newEngine(t)

	w := do(engine, http.MethodPost, "/meals", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Meal data is required")

	w = do(engine, http.MethodPost, "/meals", `{"description":"no timestamp"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
