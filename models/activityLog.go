package models

import "time"

// ActivityLog is one audit entry: an analysis request or a meal mutation.
// Properties holds the JSON of structs.ActivityLogJsonModel.
type ActivityLog struct {
	ID          int64      `gorm:"column:id;primary_key" json:"id"`
	LogName     string     `gorm:"column:log_name;type:varchar(64);index:idx_activity_log_name" json:"log_name"`
	Description string     `gorm:"column:description;type:varchar(255)" json:"description"`
	SubjectType string     `gorm:"column:subject_type;type:varchar(32)" json:"subject_type"`
	SubjectID   string     `gorm:"column:subject_id;type:varchar(36);index:idx_activity_subject" json:"subject_id"`
	Properties  string     `gorm:"column:properties;size:65535" json:"properties"`
	CreatedAt   *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (a *ActivityLog) TableName() string {
	return "activity_log"
}
