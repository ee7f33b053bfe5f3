package utils

import (
	"calorie-tracker/enums"
	"calorie-tracker/structs"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var EnvConfig *structs.EnviromentModel

type EnvService struct {
	// ConfigPath overrides the directory searched for config.yml.
	ConfigPath string
}

func (e *EnvService) InitEnv() {
	e.loadConfig()
	e.configToModel()
}

func (e *EnvService) loadConfig() {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	Defaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	if e.ConfigPath != "" {
		viper.AddConfigPath(e.ConfigPath)
	}
	viper.AddConfigPath(".")

	// env vars also override a config file, e.g. GEMINI_API_KEY for gemini.api_key
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("Fatal error config file: %s \n", err))
		}
	}
}

// Defaults registers fallback values for every key read by configToModel.
func Defaults() {
	viper.SetDefault("database.client", "sqlite")
	viper.SetDefault("database.name", "calorie-tracker.db")
	viper.SetDefault("database.max_idle", 2)
	viper.SetDefault("database.max_open_conn", 10)
	viper.SetDefault("database.max_life_time", "1h")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("auth.cookie_secure", true)
	viper.SetDefault("auth.max_age_days", 7)
	viper.SetDefault("server.timezone", "Local")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("router.port", 8080)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.dir", "logs")
	viper.SetDefault("rabbitmq.queue", enums.DefaultMealQueue)
	viper.SetDefault("upload.max_bytes", enums.MaxUploadBytes)
}

func (e *EnvService) configToModel() {
	var config structs.EnviromentModel
	config.Database.Client = viper.GetString("database.client")
	config.Database.Host = viper.GetString("database.host")
	config.Database.User = viper.GetString("database.user")
	config.Database.Password = viper.GetString("database.password")
	config.Database.Db = viper.GetString("database.name")
	config.Database.MaxIdle = uint(viper.GetInt("database.max_idle"))
	config.Database.MaxOpenConn = uint(viper.GetInt("database.max_open_conn"))
	config.Database.MaxLifeTime = viper.GetString("database.max_life_time")
	config.Database.Params = viper.GetString("database.params")
	config.Database.Port = viper.GetString("database.port")
	config.Database.LogEnable = viper.GetInt("database.log_enable")
	config.Gemini.APIKey = strings.TrimSpace(viper.GetString("gemini.api_key"))
	config.Gemini.Model = viper.GetString("gemini.model")
	config.Gemini.BaseURL = viper.GetString("gemini.base_url")
	config.Gemini.TimeoutSeconds = viper.GetInt("gemini.timeout_seconds")
	config.Auth.Username = viper.GetString("auth.username")
	config.Auth.Password = viper.GetString("auth.password")
	config.Auth.TokenSecret = viper.GetString("auth.token_secret")
	config.Auth.CookieSecure = viper.GetBool("auth.cookie_secure")
	config.Auth.MaxAgeDays = viper.GetInt("auth.max_age_days")
	config.RabbitMQ.Enable = viper.GetInt("rabbitmq.enable")
	config.RabbitMQ.Domain = viper.GetString("rabbitmq.domain")
	config.RabbitMQ.Queue = viper.GetString("rabbitmq.queue")
	config.Log.Level = viper.GetString("log.level")
	config.Log.Dir = viper.GetString("log.dir")
	config.Log.ElkEnable = viper.GetInt("log.elk.enable")
	config.Log.ElkIndex = viper.GetString("log.elk.index")
	config.Log.ElkURL = viper.GetString("log.elk.url")
	config.Log.LogstashEnable = viper.GetInt("log.logstash.enable")
	config.Log.LogstashURL = viper.GetString("log.logstash.url")
	config.Log.LogstashIndex = viper.GetString("log.logstash.index")
	config.Server.Timezone = viper.GetString("server.timezone")
	config.Server.Mode = viper.GetString("server.mode")
	config.Router.Port = viper.GetInt("router.port")
	config.Upload.MaxBytes = viper.GetInt64("upload.max_bytes")
	EnvConfig = &config
}

// Location resolves server.timezone, falling back to the process local zone.
func Location() *time.Location {
	if EnvConfig == nil || EnvConfig.Server.Timezone == "" || EnvConfig.Server.Timezone == "Local" {
		return time.Local
	}
	location, err := time.LoadLocation(EnvConfig.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return location
}
