package gemini

import (
	"calorie-tracker/structs"
	"fmt"
	"strings"
)

const responseInstructions = `
Please provide a detailed breakdown of:
1. Total calories
2. Protein (in grams)
3. Carbohydrates (in grams)
4. Fat (in grams)

Return the result in JSON format like this:
{
  "nutrition": {
    "calories": number,
    "protein": number,
    "carbs": number,
    "fat": number
  }
}

Only return the JSON object, nothing else.`

// BuildPrompt returns the instruction text for an analysis request. The same
// input always yields the same prompt.
func BuildPrompt(input structs.AnalyzeInput) string {
	description := strings.TrimSpace(input.Description)
	var prompt strings.Builder
	if len(input.Image) > 0 {
		prompt.WriteString("Analyze this food image and estimate its nutritional content.")
		if description != "" {
			prompt.WriteString(" Additional information: ")
			prompt.WriteString(description)
		}
		prompt.WriteString("\n")
	} else {
		prompt.WriteString("Analyze the following food description and estimate its nutritional content.\n")
		prompt.WriteString(fmt.Sprintf("Food description: %q\n", description))
	}
	prompt.WriteString(responseInstructions)
	return prompt.String()
}
