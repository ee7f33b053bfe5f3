package structs

// Nutrition is the estimate returned by the model. A nil field means the
// model did not report it; consumers treat it as zero when aggregating.
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

// NutritionTotals is the per-day aggregate shown in the summary.
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Meals    int     `json:"meals"`
}

type AnalyzeResponse struct {
	Nutrition Nutrition `json:"nutrition"`
}
