package nutrition

import (
	"errors"
	"testing"

	"calorie-tracker/apperr"
	"calorie-tracker/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestExtractWholeJSON(t *testing.T) {
	raw := `{"nutrition":{"calories":140,"protein":12,"carbs":2,"fat":10}}`
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, structs.Nutrition{Calories: ptr(140), Protein: ptr(12), Carbs: ptr(2), Fat: ptr(10)}, got)
}

func TestExtractWrappedInProse(t *testing.T) {
	raw := `Sure! {"nutrition":{"calories":140,"protein":12,"carbs":2,"fat":10}}`
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, structs.Nutrition{Calories: ptr(140), Protein: ptr(12), Carbs: ptr(2), Fat: ptr(10)}, got)
}

func TestExtractCodeFenceAndTrailingText(t *testing.T) {
	raw := "Here you go:\n```json\n{\n  \"nutrition\": {\"calories\": 520.5, \"protein\": 31, \"carbs\": 44, \"fat\": 22}\n}\n```\nLet me know if you need anything else :}"
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, 520.5, *got.Calories)
	assert.Equal(t, 22.0, *got.Fat)
}

func TestExtractPreservesMissingFields(t *testing.T) {
	got, err := Extract(`{"nutrition":{"calories":300,"protein":20}}`)
	require.NoError(t, err)
	assert.Equal(t, 300.0, *got.Calories)
	assert.Equal(t, 20.0, *got.Protein)
	assert.Nil(t, got.Carbs)
	assert.Nil(t, got.Fat)
}

func TestExtractFlatObject(t *testing.T) {
	got, err := Extract(`{"Calories": 95, "protein": 0.5, "carbs": 25, "fat": 0.3}`)
	require.NoError(t, err)
	assert.Equal(t, 95.0, *got.Calories)
	assert.Equal(t, 0.3, *got.Fat)
}

func TestExtractCoercesNumericStrings(t *testing.T) {
	got, err := Extract(`{"nutrition":{"calories":"250","protein":"12.5 g","carbs":"about","fat":null}}`)
	require.NoError(t, err)
	assert.Equal(t, 250.0, *got.Calories)
	assert.Equal(t, 12.5, *got.Protein)
	assert.Nil(t, got.Carbs)
	assert.Nil(t, got.Fat)
}

func TestExtractDoesNotClampNegatives(t *testing.T) {
	got, err := Extract(`{"nutrition":{"calories":-5}}`)
	require.NoError(t, err)
	assert.Equal(t, -5.0, *got.Calories)
}

func TestExtractFailures(t *testing.T) {
	cases := map[string]string{
		"no braces":       "I could not identify any food in this picture.",
		"empty":           "",
		"broken json":     `Result: {"nutrition": {"calories": 100,}`,
		"reversed braces": "} nothing here {",
		"array":           `[1, 2, 3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(raw)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindParse))
			var classified *apperr.Error
			require.True(t, errors.As(err, &classified))
			assert.Equal(t, raw, classified.Raw)
		})
	}
}

func TestExtractNutritionNotObject(t *testing.T) {
	_, err := Extract(`{"nutrition": "unknown"}`)
	assert.True(t, apperr.Is(err, apperr.KindParse))
}
