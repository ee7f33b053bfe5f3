package food

import (
	"calorie-tracker/apperr"
	"calorie-tracker/controllers"
	"calorie-tracker/enums"
	"calorie-tracker/services/nutrition"
	"calorie-tracker/services/preview"
	"calorie-tracker/structs"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// multipart framing and the description field ride on top of the file
const formOverheadBytes = 1 << 20

type Analyzer interface {
	Analyze(ctx context.Context, input structs.AnalyzeInput) (string, error)
}

type ActivityRecorder interface {
	Insert(ctx context.Context, logName, description string, data structs.ActivityLogJsonModel) error
}

type FoodController struct {
	analyzer Analyzer
	activity ActivityRecorder
	maxBytes int64
	logger   *logrus.Entry
}

func NewFoodController(analyzer Analyzer, activity ActivityRecorder, maxBytes int64, logger *logrus.Entry) *FoodController {
	if maxBytes <= 0 {
		maxBytes = enums.MaxUploadBytes
	}
	return &FoodController{analyzer: analyzer, activity: activity, maxBytes: maxBytes, logger: logger}
}

// AnalyzeFood estimates nutrition for a text description.
func (f *FoodController) AnalyzeFood(c *gin.Context) {
	var param structs.AnalyzeFoodParam
	if err := c.ShouldBindJSON(&param); err != nil {
		controllers.RespondError(c, f.logger, "Failed to analyze food", apperr.Validation("Food description is required"))
		return
	}
	param.Description = strings.TrimSpace(param.Description)
	if param.Description == "" {
		controllers.RespondError(c, f.logger, "Failed to analyze food", apperr.Validation("Food description is required"))
		return
	}

	f.analyze(c, "Failed to analyze food", structs.AnalyzeInput{Description: param.Description})
}

// AnalyzeFoodImage estimates nutrition for an uploaded photo with an
// optional description.
func (f *FoodController) AnalyzeFoodImage(c *gin.Context) {
	const headline = "Failed to analyze food image"
	tooLarge := preview.ValidateUpload(f.maxBytes+1, "image/jpeg", f.maxBytes)

	if c.Request.ContentLength > f.maxBytes+formOverheadBytes {
		controllers.RespondError(c, f.logger, headline, tooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, f.maxBytes+formOverheadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			controllers.RespondError(c, f.logger, headline, tooLarge)
			return
		}
		controllers.RespondError(c, f.logger, headline, apperr.Validation("No image file provided"))
		return
	}

	mimeType := uploadMime(fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err := preview.ValidateUpload(fileHeader.Size, mimeType, f.maxBytes); err != nil {
		controllers.RespondError(c, f.logger, headline, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		controllers.RespondError(c, f.logger, headline, apperr.Validation("No image file provided"))
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		controllers.RespondError(c, f.logger, headline, apperr.Upstream("read uploaded image", err))
		return
	}

	f.analyze(c, headline, structs.AnalyzeInput{
		Description: strings.TrimSpace(c.PostForm("description")),
		Image:       image,
		MimeType:    mimeType,
	})
}

func (f *FoodController) analyze(c *gin.Context, headline string, input structs.AnalyzeInput) {
	ctx := c.Request.Context()
	fields := logrus.Fields{"has_image": len(input.Image) > 0, "description": input.Description}

	raw, err := f.analyzer.Analyze(ctx, input)
	if err != nil {
		f.record(ctx, input, nil, err)
		controllers.RespondError(c, f.logger, headline, err)
		return
	}

	result, err := nutrition.Extract(raw)
	if err != nil {
		f.logger.WithFields(fields).WithField("raw", raw).Warn("no nutrition object in model response")
		f.record(ctx, input, nil, err)
		controllers.RespondError(c, f.logger, headline, err)
		return
	}

	f.logger.WithFields(fields).Info("food analyzed")
	f.record(ctx, input, &result, nil)
	c.JSON(http.StatusOK, structs.AnalyzeResponse{Nutrition: result})
}

func (f *FoodController) record(ctx context.Context, input structs.AnalyzeInput, result *structs.Nutrition, cause error) {
	if f.activity == nil {
		return
	}
	data := structs.ActivityLogJsonModel{
		Type:        enums.ActivityFoodAnalyzed,
		Description: input.Description,
		Result:      cause == nil,
		Nutrition:   result,
		Message:     "ok",
	}
	if cause != nil {
		data.Message = cause.Error()
	}
	description := "text analysis"
	if len(input.Image) > 0 {
		description = "image analysis"
	}
	if err := f.activity.Insert(ctx, enums.ActivityFoodAnalyzed, description, data); err != nil {
		f.logger.WithError(err).Warn("activity log insert failed")
	}
}

// uploadMime trusts the part header unless it is missing or generic, then
// falls back to the file extension.
func uploadMime(header, filename string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err == nil && mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		mediaType, _, _ = mime.ParseMediaType(byExt)
		return mediaType
	}
	return header
}
