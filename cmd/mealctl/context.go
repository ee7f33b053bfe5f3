package main

import (
	"calorie-tracker/client"
	"calorie-tracker/enums"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

type commandContext struct {
	server      *string
	sessionPath *string
	timezone    *string
	verbose     *bool

	client *client.Client
}

func newCommandContext(server, sessionPath, timezone *string, verbose *bool) *commandContext {
	return &commandContext{server: server, sessionPath: sessionPath, timezone: timezone, verbose: verbose}
}

func (c *commandContext) location() (*time.Location, error) {
	if *c.timezone == "" || *c.timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(*c.timezone)
}

// ensureClient builds the API client once and restores the saved session.
func (c *commandContext) ensureClient() (*client.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	location, err := c.location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if *c.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	apiClient, err := client.New(*c.server,
		client.WithLocation(location),
		client.WithLogger(logrus.NewEntry(logger)),
		client.WithTransitionHook(func(from, to client.State) {
			logger.WithFields(logrus.Fields{"from": from, "to": to}).Debug("capture")
		}),
	)
	if err != nil {
		return nil, err
	}
	cookies, err := loadCookies(*c.sessionPath)
	if err != nil {
		return nil, err
	}
	apiClient.SetCookies(cookies)
	c.client = apiClient
	return apiClient, nil
}

func (c *commandContext) saveSession() error {
	if c.client == nil {
		return nil
	}
	return saveCookies(*c.sessionPath, c.client.Cookies())
}

// resolveDate defaults to today in the configured zone.
func (c *commandContext) resolveDate(date string) (string, error) {
	if date != "" {
		if _, err := time.Parse(enums.DateLayout, date); err != nil {
			return "", fmt.Errorf("date must be YYYY-MM-DD: %q", date)
		}
		return date, nil
	}
	apiClient, err := c.ensureClient()
	if err != nil {
		return "", err
	}
	return apiClient.Today(), nil
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mealctl-session.json"
	}
	return filepath.Join(dir, "mealctl", "session.json")
}

func loadCookies(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, cookie := range saved {
		cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value, Path: "/"})
	}
	return cookies, nil
}

func saveCookies(path string, cookies []*http.Cookie) error {
	saved := make([]savedCookie, 0, len(cookies))
	for _, cookie := range cookies {
		saved = append(saved, savedCookie{Name: cookie.Name, Value: cookie.Value})
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
