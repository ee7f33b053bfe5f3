package nutrition

import (
	"bytes"
	"calorie-tracker/apperr"
	"calorie-tracker/structs"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var fieldKeys = []string{"calories", "protein", "carbs", "fat"}

type parseResult struct {
	nutrition structs.Nutrition
	ok        bool
	err       error
}

// Extract turns the model's free-text reply into a nutrition record. The
// whole text is tried as JSON first, then the span from the first '{' to the
// last '}'. Missing fields stay nil.
func Extract(raw string) (structs.Nutrition, error) {
	whole := tryParseWhole(raw)
	if whole.ok {
		return whole.nutrition, nil
	}
	span := tryExtractBalancedSpan(raw)
	if span.ok {
		return span.nutrition, nil
	}
	cause := span.err
	if cause == nil {
		cause = whole.err
	}
	return structs.Nutrition{}, apperr.Parse("Failed to parse nutrition data from AI response", raw, cause)
}

func tryParseWhole(raw string) parseResult {
	return decodeObject(strings.TrimSpace(raw), true)
}

func tryExtractBalancedSpan(raw string) parseResult {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return parseResult{err: errors.New("no JSON object in response")}
	}
	// the first complete object wins; prose after it is ignored
	return decodeObject(raw[start:end+1], false)
}

func decodeObject(text string, whole bool) parseResult {
	if text == "" {
		return parseResult{err: errors.New("empty response")}
	}
	var object map[string]json.RawMessage
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	if err := decoder.Decode(&object); err != nil {
		return parseResult{err: err}
	}
	if whole && decoder.More() {
		return parseResult{err: errors.New("trailing data after JSON object")}
	}
	if object == nil {
		return parseResult{err: errors.New("response is not a JSON object")}
	}

	// {"nutrition": {...}} is the requested shape; a bare object with the
	// four keys is accepted as well
	fields := object
	if inner, ok := object["nutrition"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err != nil || nested == nil {
			return parseResult{err: errors.New("nutrition is not a JSON object")}
		}
		fields = nested
	}

	var result structs.Nutrition
	targets := map[string]**float64{
		"calories": &result.Calories,
		"protein":  &result.Protein,
		"carbs":    &result.Carbs,
		"fat":      &result.Fat,
	}
	for _, key := range fieldKeys {
		if value, ok := coerceNumber(lookup(fields, key)); ok {
			*targets[key] = &value
		}
	}
	return parseResult{nutrition: result, ok: true}
}

func lookup(fields map[string]json.RawMessage, key string) json.RawMessage {
	if value, ok := fields[key]; ok {
		return value
	}
	for name, value := range fields {
		if strings.EqualFold(name, key) {
			return value
		}
	}
	return nil
}

// coerceNumber accepts JSON numbers and numeric strings such as "12" or
// "12.5 g". Anything else is treated as absent.
func coerceNumber(value json.RawMessage) (float64, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return 0, false
	}
	var number json.Number
	if err := json.Unmarshal(value, &number); err == nil {
		if f, err := number.Float64(); err == nil {
			return f, true
		}
	}
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return 0, false
	}
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && (text[end] == '.' || text[end] == '-' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	f, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
