package router

import (
	"calorie-tracker/controllers/auth"
	"calorie-tracker/controllers/check"
	"calorie-tracker/controllers/food"
	"calorie-tracker/controllers/meal"
	"calorie-tracker/controllers/readProbe"
	"calorie-tracker/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Auth        *auth.AuthController
	Food        *food.FoodController
	Meal        *meal.MealController
	Check       *check.CheckController
	TokenSecret string
	Logger      *logrus.Entry
}

func Router(ctl Controllers) *gin.Engine {
	route := gin.New()
	route.Use(gin.Logger(), gin.Recovery())

	route.GET("/read-probe", readProbe.Probe(ctl.Check))
	route.POST("/auth/login", ctl.Auth.Login)

	private := route.Group("/")
	private.Use(middlewares.AuthMiddleware(ctl.TokenSecret, ctl.Logger))
	{
		private.POST("/auth/logout", ctl.Auth.Logout)
		private.POST("/analyze-food", ctl.Food.AnalyzeFood)
		private.POST("/analyze-food-image", ctl.Food.AnalyzeFoodImage)
		private.GET("/meals", ctl.Meal.List)
		private.POST("/meals", ctl.Meal.Create)
		private.DELETE("/meals/:id", ctl.Meal.Delete)
		private.GET("/check-live", ctl.Check.CheckAlive)
	}

	return route
}
