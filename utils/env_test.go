package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"calorie-tracker/structs"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEnvFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("GEMINI_API_KEY", "  test-key  ")
	t.Setenv("ROUTER_PORT", "9090")

	envService := EnvService{ConfigPath: t.TempDir()}
	envService.InitEnv()

	require.NotNil(t, EnvConfig)
	assert.Equal(t, "test-key", EnvConfig.Gemini.APIKey)
	assert.Equal(t, 9090, EnvConfig.Router.Port)
	assert.Equal(t, "gemini-2.0-flash", EnvConfig.Gemini.Model)
	assert.Equal(t, "sqlite", EnvConfig.Database.Client)
	assert.Equal(t, int64(5*1024*1024), EnvConfig.Upload.MaxBytes)
	assert.Equal(t, 7, EnvConfig.Auth.MaxAgeDays)
}

func TestInitEnvFromConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	config := []byte("database:\n  client: mysql\n  host: db.internal\nserver:\n  timezone: Asia/Taipei\nauth:\n  username: me\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), config, 0o644))

	envService := EnvService{ConfigPath: dir}
	envService.InitEnv()

	assert.Equal(t, "mysql", EnvConfig.Database.Client)
	assert.Equal(t, "db.internal", EnvConfig.Database.Host)
	assert.Equal(t, "me", EnvConfig.Auth.Username)
	assert.Equal(t, "Asia/Taipei", EnvConfig.Server.Timezone)
}

func TestLocation(t *testing.T) {
	previous := EnvConfig
	t.Cleanup(func() { EnvConfig = previous })

	EnvConfig = &structs.EnviromentModel{}
	assert.Equal(t, time.Local, Location())

	EnvConfig.Server.Timezone = "UTC"
	assert.Equal(t, "UTC", Location().String())

	EnvConfig.Server.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, Location())
}
