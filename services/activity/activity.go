package activity

import (
	"calorie-tracker/models"
	"calorie-tracker/structs"
	"context"
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm"
)

const subjectType = "meal"

type ActivityLogService struct {
	db *gorm.DB
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

// Insert writes one row to the activity_log table.
func (a *ActivityLogService) Insert(ctx context.Context, logName, description string, data structs.ActivityLogJsonModel) error {
	if a == nil || a.db == nil {
		return nil
	}
	activityLogJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	insertTime := time.Now()
	var activityLogEntity models.ActivityLog
	activityLogEntity.CreatedAt = &insertTime
	activityLogEntity.UpdatedAt = &insertTime
	activityLogEntity.LogName = logName
	activityLogEntity.Description = description
	activityLogEntity.Properties = string(activityLogJSON)
	activityLogEntity.SubjectID = data.MealID
	activityLogEntity.SubjectType = subjectType

	return a.db.New().Create(&activityLogEntity).Error
}

// Recent returns the latest rows, newest first.
func (a *ActivityLogService) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.ActivityLog
	err := a.db.New().Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}
