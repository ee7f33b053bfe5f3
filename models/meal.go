package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

type Meal struct {
	ID           string     `gorm:"column:id;primary_key;type:varchar(36)" json:"id"`
	Description  string     `gorm:"column:description;size:65535" json:"description"`
	Calories     *float64   `gorm:"column:calories" json:"calories"`
	Protein      *float64   `gorm:"column:protein" json:"protein"`
	Carbs        *float64   `gorm:"column:carbs" json:"carbs"`
	Fat          *float64   `gorm:"column:fat" json:"fat"`
	LoggedAt     time.Time  `gorm:"column:logged_at;not null" json:"logged_at"`
	MealDate     string     `gorm:"column:meal_date;type:varchar(10);index:idx_meals_meal_date" json:"meal_date"`
	ImagePreview *string    `gorm:"column:image_preview;size:1048576" json:"image_preview"`
	CreatedAt    *time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName sets the insert table name for this struct type
func (m *Meal) TableName() string {
	return "meals"
}

// BeforeCreate assigns the id; callers never choose it.
func (m *Meal) BeforeCreate(scope *gorm.Scope) error {
	return scope.SetColumn("ID", uuid.NewString())
}
