package meal

import (
	"calorie-tracker/apperr"
	"calorie-tracker/enums"
	"calorie-tracker/models"
	"calorie-tracker/structs"
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// EventPublisher receives a message after every successful mutation.
type EventPublisher interface {
	Publish(queue string, body interface{}) error
}

// ActivityRecorder writes the audit trail for meal mutations.
type ActivityRecorder interface {
	Insert(ctx context.Context, logName, description string, data structs.ActivityLogJsonModel) error
}

// MealService is the only owner of meal identity and durable state. Each
// operation touches a single row.
type MealService struct {
	db         *gorm.DB
	location   *time.Location
	logger     *logrus.Entry
	activity   ActivityRecorder
	publisher  EventPublisher
	queue      string
	maxPreview int
}

type Option func(*MealService)

func WithLocation(location *time.Location) Option {
	return func(s *MealService) {
		if location != nil {
			s.location = location
		}
	}
}

func WithLogger(logger *logrus.Entry) Option {
	return func(s *MealService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivityRecorder(recorder ActivityRecorder) Option {
	return func(s *MealService) {
		s.activity = recorder
	}
}

func WithEventPublisher(publisher EventPublisher, queue string) Option {
	return func(s *MealService) {
		s.publisher = publisher
		if queue != "" {
			s.queue = queue
		}
	}
}

func NewMealService(db *gorm.DB, opts ...Option) *MealService {
	service := &MealService{
		db:         db,
		location:   time.Local,
		logger:     logrus.NewEntry(logrus.StandardLogger()),
		queue:      enums.DefaultMealQueue,
		maxPreview: enums.MaxPreviewBytes,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// DateOf projects an instant onto the store's calendar day.
func (s *MealService) DateOf(timestamp time.Time) string {
	return timestamp.In(s.location).Format(enums.DateLayout)
}

// Save assigns an id, derives the date partition and persists the record.
// Previews over 500 KB are dropped rather than stored.
func (s *MealService) Save(ctx context.Context, record structs.MealRecord) (structs.MealRecord, error) {
	if record.Timestamp.IsZero() {
		return structs.MealRecord{}, apperr.Validation("Meal timestamp is required")
	}

	mealEntity := models.Meal{
		Description: strings.TrimSpace(record.Description),
		LoggedAt:    record.Timestamp.UTC(),
		MealDate:    s.DateOf(record.Timestamp),
	}
	if record.Nutrition != nil {
		mealEntity.Calories = record.Nutrition.Calories
		mealEntity.Protein = record.Nutrition.Protein
		mealEntity.Carbs = record.Nutrition.Carbs
		mealEntity.Fat = record.Nutrition.Fat
	}
	if record.ImagePreview != nil && *record.ImagePreview != "" {
		size := len(*record.ImagePreview)
		if size > s.maxPreview {
			s.logger.WithFields(logrus.Fields{"size": humanize.Bytes(uint64(size))}).
				Info("image preview too large for storage, dropping it")
		} else {
			preview := *record.ImagePreview
			mealEntity.ImagePreview = &preview
		}
	}

	if err := s.db.Create(&mealEntity).Error; err != nil {
		return structs.MealRecord{}, apperr.Storage("Failed to create meal", err)
	}

	saved := s.toRecord(mealEntity)
	s.logger.WithFields(logrus.Fields{"meal_id": saved.ID, "date": saved.Date}).Info("meal saved")
	s.afterMutation(ctx, enums.ActivityMealCreated, "meal logged", saved)
	return saved, nil
}

// ListByDate returns the meals of one calendar day, oldest first. A day
// without meals yields an empty slice.
func (s *MealService) ListByDate(ctx context.Context, date string) ([]structs.MealRecord, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, apperr.Validation("Date parameter is required")
	}
	if _, err := time.Parse(enums.DateLayout, date); err != nil {
		return nil, apperr.Validation("Date parameter must be YYYY-MM-DD")
	}

	var mealEntities []models.Meal
	if err := s.db.Where("meal_date = ?", date).Order("logged_at asc").Order("created_at asc").Find(&mealEntities).Error; err != nil {
		return nil, apperr.Storage("Failed to fetch meals", err)
	}

	records := make([]structs.MealRecord, 0, len(mealEntities))
	for _, mealEntity := range mealEntities {
		records = append(records, s.toRecord(mealEntity))
	}
	return records, nil
}

// DeleteByID removes one meal. Deleting an id that does not exist succeeds.
func (s *MealService) DeleteByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("Meal ID is required")
	}

	result := s.db.Where("id = ?", id).Delete(&models.Meal{})
	if result.Error != nil {
		return apperr.Storage("Failed to delete meal", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.WithFields(logrus.Fields{"meal_id": id}).Debug("delete matched no meal")
		return nil
	}

	s.logger.WithFields(logrus.Fields{"meal_id": id}).Info("meal deleted")
	s.afterMutation(ctx, enums.ActivityMealDeleted, "meal deleted", structs.MealRecord{ID: id})
	return nil
}

func (s *MealService) toRecord(mealEntity models.Meal) structs.MealRecord {
	return structs.MealRecord{
		ID:          mealEntity.ID,
		Description: mealEntity.Description,
		Nutrition: &structs.Nutrition{
			Calories: mealEntity.Calories,
			Protein:  mealEntity.Protein,
			Carbs:    mealEntity.Carbs,
			Fat:      mealEntity.Fat,
		},
		Timestamp:    mealEntity.LoggedAt.In(s.location),
		Date:         mealEntity.MealDate,
		ImagePreview: mealEntity.ImagePreview,
	}
}

// afterMutation records the audit row and publishes the event. Both are best
// effort: the meal is already durable.
func (s *MealService) afterMutation(ctx context.Context, logName, description string, record structs.MealRecord) {
	if s.activity != nil {
		data := structs.ActivityLogJsonModel{
			Type:        logName,
			MealID:      record.ID,
			Date:        record.Date,
			Description: record.Description,
			Nutrition:   record.Nutrition,
			Result:      true,
			Message:     "ok",
		}
		if err := s.activity.Insert(ctx, logName, description, data); err != nil {
			s.logger.WithError(err).WithField("meal_id", record.ID).Warn("activity log insert failed")
		}
	}
	if s.publisher != nil {
		event := structs.MealEventParam{
			Type:       logName,
			MealID:     record.ID,
			Date:       record.Date,
			Nutrition:  record.Nutrition,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.publisher.Publish(s.queue, event); err != nil {
			s.logger.WithError(err).WithField("meal_id", record.ID).Warn("meal event publish failed")
		}
	}
}
