package structs

import "time"

// MealEventParam is the message body published to the meal event queue.
type MealEventParam struct {
	Type       string     `json:"type"`
	MealID     string     `json:"meal_id"`
	Date       string     `json:"date,omitempty"`
	Nutrition  *Nutrition `json:"nutrition,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
