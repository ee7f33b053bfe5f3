package structs

import "time"

type MealRecord struct {
	ID           string     `json:"id,omitempty"`
	Description  string     `json:"description"`
	Nutrition    *Nutrition `json:"nutrition"`
	Timestamp    time.Time  `json:"timestamp"`
	Date         string     `json:"date,omitempty"`
	ImagePreview *string    `json:"imagePreview,omitempty"`
}

type AnalyzeFoodParam struct {
	Description string `json:"description" form:"description"`
}

// AnalyzeInput is one inference request: a description, an image, or both.
type AnalyzeInput struct {
	Description string
	Image       []byte
	MimeType    string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type LoginParam struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
