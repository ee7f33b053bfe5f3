package main

import (
	"calorie-tracker/services/nutrition"
	"calorie-tracker/structs"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderMeals(meals []structs.MealRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Time", "Description", "Calories", "Protein", "Carbs", "Fat", "ID"})
	for _, meal := range meals {
		n := mealNutrition(meal)
		description := meal.Description
		if meal.ImagePreview != nil {
			description += " [photo]"
		}
		tw.AppendRow(table.Row{
			meal.Timestamp.Local().Format("15:04"),
			text.Trim(description, 40),
			formatMacro(n.Calories, "kcal"),
			formatMacro(n.Protein, "g"),
			formatMacro(n.Carbs, "g"),
			formatMacro(n.Fat, "g"),
			meal.ID,
		})
	}
	tw.SetColumnConfigs(rightAligned(3, 4, 5, 6))
	return tw.Render()
}

func renderSummary(date string, totals structs.NutritionTotals) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s (%s)", date, mealCount(totals.Meals)))
	tw.AppendHeader(table.Row{"Calories", "Protein", "Carbs", "Fat"})
	tw.AppendRow(table.Row{
		humanize.FormatFloat("#,###.#", totals.Calories),
		nutrition.FormatGrams(totals.Protein),
		nutrition.FormatGrams(totals.Carbs),
		nutrition.FormatGrams(totals.Fat),
	})
	tw.SetColumnConfigs(rightAligned(1, 2, 3, 4))
	return tw.Render()
}

func rightAligned(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, number := range columns {
		configs = append(configs, table.ColumnConfig{Number: number, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	return configs
}

func mealCount(n int) string {
	if n == 1 {
		return "1 meal"
	}
	return strconv.Itoa(n) + " meals"
}
