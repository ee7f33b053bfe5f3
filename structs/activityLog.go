package structs

type ActivityLogJsonModel struct {
	Type        string     `json:"type"`
	MealID      string     `json:"meal_id,omitempty"`
	Date        string     `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
	Result      bool       `json:"result"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	Message     string     `json:"message"`
}
