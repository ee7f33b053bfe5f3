// Package client talks to the calorie-tracker server and drives a capture
// from input to a refreshed meal list.
package client

import (
	"bytes"
	"calorie-tracker/apperr"
	"calorie-tracker/services"
	"calorie-tracker/structs"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is returned when the server rejects the session cookie.
var ErrUnauthorized = errors.New("not logged in")

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
	location   *time.Location
	now        func() time.Time
	hook       TransitionHook
}

type Option func(*Client)

// WithHTTPClient replaces the default client. A client without a cookie
// jar gets one.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithLocation(location *time.Location) Option {
	return func(c *Client) {
		if location != nil {
			c.location = location
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithTransitionHook(hook TransitionHook) Option {
	return func(c *Client) {
		c.hook = hook
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logrus.NewEntry(logrus.StandardLogger()),
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		copied := *c.httpClient
		copied.Jar = jar
		c.httpClient = &copied
	}
	return c, nil
}

// Cookies exposes the session cookies so a CLI can persist them.
func (c *Client) Cookies() []*http.Cookie {
	u, _ := url.Parse(c.baseURL)
	return c.httpClient.Jar.Cookies(u)
}

// SetCookies restores cookies saved by Cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, _ := url.Parse(c.baseURL)
	c.httpClient.Jar.SetCookies(u, cookies)
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/login", nil, structs.LoginParam{Username: username, Password: password})
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	var response structs.MessageResponse
	_ = json.Unmarshal(body, &response)
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, response.Message)
	}
	return apperr.Configuration(response.Message)
}

func (c *Client) Logout(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	return c.check(status, body, apperr.KindUpstream)
}

// AnalyzeText asks the server for a nutrition estimate of a description.
func (c *Client) AnalyzeText(ctx context.Context, description string) (structs.Nutrition, error) {
	body, err := c.requestAnalysis(ctx, CaptureInput{Description: description})
	if err != nil {
		return structs.Nutrition{}, err
	}
	return decodeNutrition(body)
}

// AnalyzeImage uploads a photo with an optional description.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, description string) (structs.Nutrition, error) {
	body, err := c.requestAnalysis(ctx, CaptureInput{Description: description, Image: image, MimeType: mimeType})
	if err != nil {
		return structs.Nutrition{}, err
	}
	return decodeNutrition(body)
}

func (c *Client) SaveMeal(ctx context.Context, record structs.MealRecord) (structs.MealRecord, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/meals", nil, record)
	if err != nil {
		return structs.MealRecord{}, err
	}
	if err := c.check(status, body, apperr.KindStorage); err != nil {
		return structs.MealRecord{}, err
	}
	var saved structs.MealRecord
	if err := json.Unmarshal(body, &saved); err != nil {
		return structs.MealRecord{}, apperr.Upstream("decode saved meal", err)
	}
	return saved, nil
}

func (c *Client) ListMeals(ctx context.Context, date string) ([]structs.MealRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/meals?date="+url.QueryEscape(date), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := c.check(status, body, apperr.KindStorage); err != nil {
		return nil, err
	}
	meals := make([]structs.MealRecord, 0)
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, apperr.Upstream("decode meal list", err)
	}
	if meals == nil {
		meals = make([]structs.MealRecord, 0)
	}
	return meals, nil
}

func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Meal ID is required")
	}
	status, body, err := c.do(ctx, http.MethodDelete, "/meals/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return c.check(status, body, apperr.KindStorage)
}

func (c *Client) requestAnalysis(ctx context.Context, input CaptureInput) ([]byte, error) {
	var (
		status int
		body   []byte
		err    error
	)
	if len(input.Image) == 0 {
		status, body, err = c.do(ctx, http.MethodPost, "/analyze-food", nil, structs.AnalyzeFoodParam{Description: input.Description})
	} else {
		var form *bytes.Buffer
		var contentType string
		form, contentType, err = multipartForm(input)
		if err != nil {
			return nil, err
		}
		status, body, err = c.do(ctx, http.MethodPost, "/analyze-food-image", map[string]string{"Content-Type": contentType}, form)
	}
	if err != nil {
		return nil, err
	}
	if err := c.check(status, body, apperr.KindUpstream); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, header map[string]string, data interface{}) (int, []byte, error) {
	status, body, err := services.HttpRequest(ctx, c.httpClient, method, c.baseURL+path, header, data)
	if err != nil {
		return 0, nil, apperr.Upstream(fmt.Sprintf("%s %s", method, path), err)
	}
	c.logger.WithFields(logrus.Fields{"method": method, "path": path, "status": status}).Debug("server responded")
	return status, body, nil
}

// check turns a non-2xx answer into a classified error. Server-side failures
// are reported with kind.
func (c *Client) check(status int, body []byte, kind apperr.Kind) error {
	if status >= 200 && status < 300 {
		return nil
	}
	var response structs.ErrorResponse
	if err := json.Unmarshal(body, &response); err != nil || response.Error == "" {
		response.Error = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status >= 400 && status < 500:
		return apperr.Validation(response.Error)
	}

	var cause error
	if response.Details != "" {
		cause = errors.New(response.Details)
	}
	return &apperr.Error{Kind: kind, Message: response.Error, Err: cause}
}

func decodeNutrition(body []byte) (structs.Nutrition, error) {
	var response structs.AnalyzeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return structs.Nutrition{}, apperr.Parse("Failed to parse nutrition data from AI response", string(body), err)
	}
	return response.Nutrition, nil
}

func multipartForm(input CaptureInput) (*bytes.Buffer, string, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	filename := input.Filename
	if filename == "" {
		filename = "image" + extensionFor(input.MimeType)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", input.MimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(input.Image); err != nil {
		return nil, "", err
	}
	if input.Description != "" {
		if err := writer.WriteField("description", input.Description); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &form, writer.FormDataContentType(), nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
