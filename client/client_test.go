package client

import (
	"bytes"
	"calorie-tracker/apperr"
	"calorie-tracker/enums"
	"calorie-tracker/structs"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics the HTTP surface with an in-memory meal list.
type fakeServer struct {
	mu          sync.Mutex
	calls       int
	analyzeText string
	analyzeCode int
	listFails   bool
	uploads     []structs.AnalyzeInput
	meals       []structs.MealRecord
	nextID      int
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		var param structs.LoginParam
		json.NewDecoder(r.Body).Decode(&param)
		if param.Password != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, structs.MessageResponse{Message: "Invalid username or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: enums.AuthCookieName, Value: "token", Path: "/"})
		writeJSON(w, http.StatusOK, structs.MessageResponse{Message: "Authentication successful"})
	})
	mux.HandleFunc("POST /analyze-food", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		if !authorised(r) {
			writeJSON(w, http.StatusUnauthorized, structs.ErrorResponse{Error: "Authentication required"})
			return
		}
		f.answerAnalysis(w)
	})
	mux.HandleFunc("POST /analyze-food-image", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		file, header, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, structs.ErrorResponse{Error: "No image file provided"})
			return
		}
		data, _ := io.ReadAll(file)
		f.mu.Lock()
		f.uploads = append(f.uploads, structs.AnalyzeInput{
			Description: r.FormValue("description"),
			Image:       data,
			MimeType:    header.Header.Get("Content-Type"),
		})
		f.mu.Unlock()
		f.answerAnalysis(w)
	})
	mux.HandleFunc("GET /meals", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.listFails {
			writeJSON(w, http.StatusInternalServerError, structs.ErrorResponse{Error: "Failed to fetch meals", Details: "db down"})
			return
		}
		meals := make([]structs.MealRecord, 0)
		for _, meal := range f.meals {
			if meal.Date == r.URL.Query().Get("date") {
				meals = append(meals, meal)
			}
		}
		writeJSON(w, http.StatusOK, meals)
	})
	mux.HandleFunc("POST /meals", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		var record structs.MealRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Errorf("decode meal: %v", err)
		}
		f.mu.Lock()
		f.nextID++
		record.ID = fmt.Sprintf("meal-%d", f.nextID)
		record.Date = record.Timestamp.UTC().Format(enums.DateLayout)
		f.meals = append(f.meals, record)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, record)
	})
	mux.HandleFunc("DELETE /meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.count()
		f.mu.Lock()
		kept := f.meals[:0]
		for _, meal := range f.meals {
			if meal.ID != r.PathValue("id") {
				kept = append(kept, meal)
			}
		}
		f.meals = kept
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, structs.SuccessResponse{Success: true})
	})
	return mux
}

func (f *fakeServer) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeServer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeServer) answerAnalysis(w http.ResponseWriter) {
	if f.analyzeCode != 0 && f.analyzeCode != http.StatusOK {
		writeJSON(w, f.analyzeCode, structs.ErrorResponse{Error: "Failed to analyze food", Details: "Gemini API request failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, f.analyzeText)
}

func authorised(r *http.Request) bool {
	cookie, err := r.Cookie(enums.AuthCookieName)
	return err == nil && cookie.Value == "token"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

var fixedNow = time.Date(2024, 3, 20, 13, 45, 10, 0, time.UTC)

func newTestClient(t *testing.T, fake *fakeServer, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts = append([]Option{
		WithLogger(logrus.NewEntry(logger)),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	c, err := New(server.URL, opts...)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "owner", "hunter2"))
	return c
}

func recordTransitions() (*[]State, Option) {
	var states []State
	return &states, WithTransitionHook(func(from, to State) {
		states = append(states, to)
	})
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	// noise keeps the PNG larger than its JPEG re-encode
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rng := rand.New(rand.NewSource(7))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCaptureDescription(t *testing.T) {
	fake := &fakeServer{analyzeText: `{"nutrition":{"calories":140,"protein":12,"carbs":2,"fat":10}}`}
	states, hook := recordTransitions()
	c := newTestClient(t, fake, hook)

	session := NewSession("2024-03-15")
	session, err := c.Capture(context.Background(), session, CaptureInput{Description: "2 eggs"})
	require.NoError(t, err)

	assert.False(t, session.Loading)
	assert.False(t, session.Stale)
	assert.Equal(t, StateIdle, session.State)
	assert.Empty(t, session.Message)
	require.Len(t, session.Meals, 1)

	meal := session.Meals[0]
	assert.Equal(t, "2 eggs", meal.Description)
	assert.Equal(t, 140.0, *meal.Nutrition.Calories)
	assert.Equal(t, "2024-03-15", meal.Date)
	assert.Equal(t, time.Date(2024, 3, 15, 13, 45, 10, 0, time.UTC), meal.Timestamp.UTC())
	assert.Nil(t, meal.ImagePreview)

	assert.Equal(t, []State{StateValidating, StateInferring, StateExtracting, StatePersisting, StateRefreshing, StateIdle}, *states)
}

func TestCaptureOversizeImageMakesNoCalls(t *testing.T) {
	fake := &fakeServer{}
	states, hook := recordTransitions()
	c := newTestClient(t, fake, hook)
	before := fake.callCount()

	session, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{
		Image:    make([]byte, 6*1024*1024),
		MimeType: "image/jpeg",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, session.Message, "Image size should be less than")
	assert.False(t, session.Loading)
	assert.Equal(t, before, fake.callCount())
	assert.Empty(t, fake.meals)
	assert.Equal(t, []State{StateValidating, StateFailed, StateIdle}, *states)
}

func TestCaptureEmptyDescriptionMakesNoCalls(t *testing.T) {
	fake := &fakeServer{}
	c := newTestClient(t, fake)
	before := fake.callCount()

	session, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{Description: "   "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Food description is required", session.Message)
	assert.Equal(t, before, fake.callCount())
}

func TestCaptureRejectsNonImage(t *testing.T) {
	fake := &fakeServer{}
	c := newTestClient(t, fake)

	_, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{Image: []byte("hello"), MimeType: "text/plain"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, fake.uploads)
}

func TestCaptureImage(t *testing.T) {
	fake := &fakeServer{analyzeText: `{"nutrition":{"calories":520,"protein":25,"carbs":60,"fat":18}}`}
	states, hook := recordTransitions()
	c := newTestClient(t, fake, hook)

	session, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{
		Image:    pngImage(t, 1100, 900),
		MimeType: "image/png",
	})
	require.NoError(t, err)
	require.Len(t, session.Meals, 1)

	meal := session.Meals[0]
	assert.Equal(t, enums.DefaultImageDescription, meal.Description)
	require.NotNil(t, meal.ImagePreview)
	assert.True(t, strings.HasPrefix(*meal.ImagePreview, "data:image/jpeg;base64,"))

	require.Len(t, fake.uploads, 1)
	assert.Equal(t, "image/jpeg", fake.uploads[0].MimeType)
	assert.Empty(t, fake.uploads[0].Description)

	assert.Equal(t, []State{StateValidating, StatePreprocessing, StateInferring, StateExtracting, StatePersisting, StateRefreshing, StateIdle}, *states)
}

func TestCaptureUpstreamFailurePersistsNothing(t *testing.T) {
	fake := &fakeServer{analyzeCode: http.StatusInternalServerError}
	c := newTestClient(t, fake)

	session, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{Description: "pizza"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Equal(t, "Failed to analyze food", session.Message)
	assert.Equal(t, StateIdle, session.State)
	assert.False(t, session.Loading)
	assert.Empty(t, fake.meals)
}

func TestCaptureUndecodableAnswer(t *testing.T) {
	fake := &fakeServer{analyzeText: `not json at all`}
	c := newTestClient(t, fake)

	_, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{Description: "pizza"})
	assert.True(t, apperr.Is(err, apperr.KindParse))
	assert.Empty(t, fake.meals)
}

func TestCaptureRefreshFailureMarksStale(t *testing.T) {
	fake := &fakeServer{analyzeText: `{"nutrition":{"calories":90}}`, listFails: true}
	c := newTestClient(t, fake)

	session, err := c.Capture(context.Background(), NewSession("2024-03-15"), CaptureInput{Description: "apple"})
	require.NoError(t, err)
	assert.True(t, session.Stale)
	assert.Len(t, fake.meals, 1)
	assert.Empty(t, session.Meals)
}

func TestCaptureInFlightIsRejected(t *testing.T) {
	fake := &fakeServer{}
	c := newTestClient(t, fake)
	before := fake.callCount()

	session := NewSession("2024-03-15")
	session.Loading = true
	_, err := c.Capture(context.Background(), session, CaptureInput{Description: "toast"})
	assert.ErrorIs(t, err, ErrCaptureInFlight)
	assert.Equal(t, before, fake.callCount())
}

func TestSelectDateEmptyDay(t *testing.T) {
	fake := &fakeServer{analyzeText: `{"nutrition":{"calories":100}}`}
	c := newTestClient(t, fake)
	ctx := context.Background()

	session, err := c.Capture(ctx, NewSession("2024-03-15"), CaptureInput{Description: "banana"})
	require.NoError(t, err)
	require.Len(t, session.Meals, 1)

	session, err = c.SelectDate(ctx, session, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", session.Date)
	assert.NotNil(t, session.Meals)
	assert.Empty(t, session.Meals)
	assert.Equal(t, structs.NutritionTotals{}, Summary(session))

	_, err = c.SelectDate(ctx, session, "01/01/2024")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteRefreshes(t *testing.T) {
	fake := &fakeServer{analyzeText: `{"nutrition":{"calories":100,"protein":1.25}}`}
	c := newTestClient(t, fake)
	ctx := context.Background()

	session := NewSession("2024-03-15")
	session, err := c.Capture(ctx, session, CaptureInput{Description: "one"})
	require.NoError(t, err)
	session, err = c.Capture(ctx, session, CaptureInput{Description: "two"})
	require.NoError(t, err)
	require.Len(t, session.Meals, 2)

	totals := Summary(session)
	assert.Equal(t, 200.0, totals.Calories)
	assert.Equal(t, 2.5, totals.Protein)
	assert.Equal(t, 0.0, totals.Fat)
	assert.Equal(t, 2, totals.Meals)

	session, err = c.Delete(ctx, session, session.Meals[0].ID)
	require.NoError(t, err)
	require.Len(t, session.Meals, 1)
	assert.Equal(t, "two", session.Meals[0].Description)
}

func TestLoginRejected(t *testing.T) {
	fake := &fakeServer{}
	c := newTestClient(t, fake)

	err := c.Login(context.Background(), "owner", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMergeDate(t *testing.T) {
	now := time.Date(2024, 3, 20, 18, 5, 30, 0, time.UTC)
	merged, err := MergeDate("2024-03-15", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 18, 5, 30, 0, time.UTC), merged)

	// the clock is read in the target zone
	zone := time.FixedZone("UTC-5", -5*60*60)
	merged, err = MergeDate("2024-03-15", now, zone)
	require.NoError(t, err)
	assert.Equal(t, 13, merged.Hour())
	assert.Equal(t, 15, merged.Day())

	_, err = MergeDate("15/03/2024", now, time.UTC)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
