package nutrition

import (
	"calorie-tracker/structs"
	"math"
	"strconv"
)

// Totals sums a day's meals. Absent fields count as zero.
func Totals(meals []structs.MealRecord) structs.NutritionTotals {
	var totals structs.NutritionTotals
	for _, meal := range meals {
		totals.Meals++
		if meal.Nutrition == nil {
			continue
		}
		totals.Calories += Value(meal.Nutrition.Calories)
		totals.Protein += Value(meal.Nutrition.Protein)
		totals.Carbs += Value(meal.Nutrition.Carbs)
		totals.Fat += Value(meal.Nutrition.Fat)
	}
	totals.Calories = RoundTenth(totals.Calories)
	totals.Protein = RoundTenth(totals.Protein)
	totals.Carbs = RoundTenth(totals.Carbs)
	totals.Fat = RoundTenth(totals.Fat)
	return totals
}

func Value(field *float64) float64 {
	if field == nil {
		return 0
	}
	return *field
}

func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

// FormatGrams renders a gram value the way the summary shows it, e.g. "12.5g".
func FormatGrams(x float64) string {
	return strconv.FormatFloat(RoundTenth(x), 'f', -1, 64) + "g"
}
