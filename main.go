package main

import (
	"calorie-tracker/controllers/auth"
	"calorie-tracker/controllers/check"
	"calorie-tracker/controllers/food"
	"calorie-tracker/controllers/meal"
	"calorie-tracker/database"
	"calorie-tracker/router"
	"calorie-tracker/services/activity"
	"calorie-tracker/services/gemini"
	logLib "calorie-tracker/services/log"
	mealService "calorie-tracker/services/meal"
	"calorie-tracker/services/rabbitmq"
	"calorie-tracker/services/trackLog"
	"calorie-tracker/structs"
	"calorie-tracker/utils"
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化 env
	var envService utils.EnvService
	envService.InitEnv()
	fmt.Println("參數初始化成功...")
	config := utils.EnvConfig

	trackLog.LogTrackInit()
	trackLog.Info("calorie-tracker starting")

	var logService logLib.LogService
	logger := logService.LoggerInit("server").WithFields(logrus.Fields{"task": "server"})

	if err := database.InitDatabasePool(*config); err != nil {
		logger.WithError(err).Fatal("database init failed")
	}
	defer database.Close()

	activityLogService := activity.NewActivityLogService(database.DB)
	if err := activityLogService.Insert(context.Background(), "server.init", "calorie-tracker 初始化",
		structs.ActivityLogJsonModel{Type: "server.init", Result: true, Message: "ok"}); err != nil {
		logger.WithError(err).Warn("activity log insert failed")
	}

	mealOptions := []mealService.Option{
		mealService.WithLocation(utils.Location()),
		mealService.WithLogger(logger.WithField("component", "meal")),
		mealService.WithActivityRecorder(activityLogService),
	}

	var queue check.Queue
	if config.RabbitMQ.Enable == 1 {
		conn := rabbitmq.NewConnection("calorie-tracker", config.RabbitMQ.Domain, []string{config.RabbitMQ.Queue})
		if err := conn.Connect(); err != nil {
			// events are best effort; Publish reconnects on demand
			trackLog.WithFields(logrus.Fields{"queue": config.RabbitMQ.Queue}).Error(err.Error())
		}
		defer conn.Close()
		queue = conn
		mealOptions = append(mealOptions, mealService.WithEventPublisher(conn, config.RabbitMQ.Queue))
	}

	geminiService := gemini.NewGeminiService(gemini.Config{
		APIKey:         config.Gemini.APIKey,
		Model:          config.Gemini.Model,
		BaseURL:        config.Gemini.BaseURL,
		TimeoutSeconds: config.Gemini.TimeoutSeconds,
	}, gemini.WithLogger(logger.WithField("component", "gemini")))
	if !geminiService.Configured() {
		trackLog.Error("GEMINI_API_KEY is not set; analysis requests will fail")
	}

	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}
	route := router.Router(router.Controllers{
		Auth: auth.NewAuthController(auth.Credentials{
			Username:     config.Auth.Username,
			Password:     config.Auth.Password,
			TokenSecret:  config.Auth.TokenSecret,
			CookieSecure: config.Auth.CookieSecure,
			MaxAge:       time.Duration(config.Auth.MaxAgeDays) * 24 * time.Hour,
		}, logger.WithField("component", "auth")),
		Food: food.NewFoodController(geminiService, activityLogService, config.Upload.MaxBytes,
			logger.WithField("component", "food")),
		Meal: meal.NewMealController(mealService.NewMealService(database.DB, mealOptions...),
			logger.WithField("component", "meal")),
		Check:       check.NewCheckController(database.DB, geminiService, queue, logger.WithField("component", "check")),
		TokenSecret: config.Auth.TokenSecret,
		Logger:      logger.WithField("component", "auth"),
	})

	logger.Infof("listening on :%d", config.Router.Port)
	if err := route.Run(fmt.Sprintf(":%d", config.Router.Port)); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
}
