package client

import (
	"calorie-tracker/apperr"
	"calorie-tracker/enums"
	"calorie-tracker/services/nutrition"
	"calorie-tracker/services/preview"
	"calorie-tracker/structs"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StatePreprocessing State = "preprocessing"
	StateInferring     State = "inferring"
	StateExtracting    State = "extracting"
	StatePersisting    State = "persisting"
	StateRefreshing    State = "refreshing"
	StateFailed        State = "failed"
)

// TransitionHook observes every state change of a capture.
type TransitionHook func(from, to State)

// ErrCaptureInFlight rejects a capture started while another is loading.
var ErrCaptureInFlight = errors.New("a capture is already in progress")

// Session is the view state of one user: the selected day and its meals.
// Operations take a Session and return the updated copy.
type Session struct {
	Date    string
	Loading bool
	State   State
	Meals   []structs.MealRecord
	Message string
	// Stale is set when a mutation succeeded but the follow-up refresh
	// failed, so Meals may be out of date.
	Stale bool
}

// CaptureInput is either a description, an image, or an image with a
// description.
type CaptureInput struct {
	Description string
	Image       []byte
	MimeType    string
	Filename    string
}

func NewSession(date string) Session {
	return Session{Date: date, State: StateIdle, Meals: make([]structs.MealRecord, 0)}
}

// Today returns the current calendar day in the client's time zone.
func (c *Client) Today() string {
	return c.now().In(c.location).Format(enums.DateLayout)
}

// Capture runs one meal capture: validate, shrink the photo, infer, save and
// refresh. Nothing is persisted when any step before Persisting fails.
func (c *Client) Capture(ctx context.Context, s Session, input CaptureInput) (Session, error) {
	if s.Loading {
		return s, ErrCaptureInFlight
	}
	s.Loading = true
	s.Message = ""
	s.Stale = false
	if s.State == "" {
		s.State = StateIdle
	}

	s = c.transition(s, StateValidating)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateCapture(input); err != nil {
		return c.fail(s, err)
	}

	var imagePreview *string
	if len(input.Image) > 0 {
		s = c.transition(s, StatePreprocessing)
		upload := preview.ForUpload(input.Image, input.MimeType)
		thumbnail := preview.Thumbnail(input.Image, input.MimeType)
		if thumbnail.Fallback {
			c.logger.Warn("thumbnail generation failed, keeping original image")
		}
		c.logger.WithFields(logrus.Fields{
			"original":  humanize.Bytes(uint64(len(input.Image))),
			"upload":    humanize.Bytes(uint64(len(upload.Data))),
			"thumbnail": humanize.Bytes(uint64(len(thumbnail.Data))),
		}).Debug("image preprocessed")
		dataURI := preview.DataURI(thumbnail.Data, thumbnail.MimeType)
		imagePreview = &dataURI
		input.Image = upload.Data
		input.MimeType = upload.MimeType
	}

	s = c.transition(s, StateInferring)
	body, err := c.requestAnalysis(ctx, input)
	if err != nil {
		return c.fail(s, err)
	}

	s = c.transition(s, StateExtracting)
	result, err := decodeNutrition(body)
	if err != nil {
		return c.fail(s, err)
	}

	s = c.transition(s, StatePersisting)
	timestamp, err := MergeDate(s.Date, c.now(), c.location)
	if err != nil {
		return c.fail(s, err)
	}
	description := input.Description
	if description == "" {
		description = enums.DefaultImageDescription
	}
	if _, err := c.SaveMeal(ctx, structs.MealRecord{
		Description:  description,
		Nutrition:    &result,
		Timestamp:    timestamp,
		ImagePreview: imagePreview,
	}); err != nil {
		return c.fail(s, err)
	}

	s = c.transition(s, StateRefreshing)
	s = c.refreshAfterMutation(ctx, s)
	s = c.transition(s, StateIdle)
	s.Loading = false
	return s, nil
}

// Refresh reloads the meals of the selected day.
func (c *Client) Refresh(ctx context.Context, s Session) (Session, error) {
	meals, err := c.ListMeals(ctx, s.Date)
	if err != nil {
		s.Message = apperr.MessageOf(err)
		return s, err
	}
	s.Meals = meals
	s.Stale = false
	s.Message = ""
	return s, nil
}

// SelectDate switches the session to another day and loads its meals.
func (c *Client) SelectDate(ctx context.Context, s Session, date string) (Session, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(enums.DateLayout, date); err != nil {
		return s, apperr.Validation("Date must be YYYY-MM-DD")
	}
	s.Date = date
	s.Meals = make([]structs.MealRecord, 0)
	return c.Refresh(ctx, s)
}

// Delete removes a meal and refreshes the list. A failed refresh marks the
// session stale instead of failing the delete.
func (c *Client) Delete(ctx context.Context, s Session, id string) (Session, error) {
	if err := c.DeleteMeal(ctx, id); err != nil {
		s.Message = apperr.MessageOf(err)
		return s, err
	}
	return c.refreshAfterMutation(ctx, s), nil
}

// Summary totals the loaded meals, absent fields counting as zero.
func Summary(s Session) structs.NutritionTotals {
	return nutrition.Totals(s.Meals)
}

// MergeDate keeps the wall-clock time of now and replaces its calendar day
// with date, both in location.
func MergeDate(date string, now time.Time, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.Local
	}
	day, err := time.ParseInLocation(enums.DateLayout, date, location)
	if err != nil {
		return time.Time{}, apperr.Validation("Date must be YYYY-MM-DD")
	}
	clock := now.In(location)
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), location), nil
}

func validateCapture(input CaptureInput) error {
	if len(input.Image) == 0 {
		if input.Description == "" {
			return apperr.Validation("Food description is required")
		}
		return nil
	}
	return preview.ValidateUpload(int64(len(input.Image)), input.MimeType, enums.MaxUploadBytes)
}

func (c *Client) refreshAfterMutation(ctx context.Context, s Session) Session {
	refreshed, err := c.Refresh(ctx, s)
	if err != nil {
		c.logger.WithError(err).Warn("meal list refresh failed")
		s.Stale = true
		s.Message = ""
		return s
	}
	return refreshed
}

func (c *Client) fail(s Session, err error) (Session, error) {
	s = c.transition(s, StateFailed)
	s.Message = apperr.MessageOf(err)
	s = c.transition(s, StateIdle)
	s.Loading = false
	return s, err
}

func (c *Client) transition(s Session, to State) Session {
	from := s.State
	s.State = to
	if c.hook != nil {
		c.hook(from, to)
	}
	return s
}
