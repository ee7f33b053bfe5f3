package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("date is required"), http.StatusBadRequest},
		{"configuration", Configuration("api key missing"), http.StatusInternalServerError},
		{"upstream", Upstream("gemini call failed", errors.New("boom")), http.StatusInternalServerError},
		{"parse", Parse("no json", "hello", nil), http.StatusInternalServerError},
		{"storage", Storage("insert failed", errors.New("locked")), http.StatusInternalServerError},
		{"unclassified", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("save meal: %w", Storage("insert failed", errors.New("disk full")))
	assert.Equal(t, KindStorage, KindOf(err))
	assert.True(t, Is(err, KindStorage))
	assert.False(t, Is(nil, KindStorage))
	assert.Equal(t, "insert failed", MessageOf(err))
	assert.Equal(t, "insert failed: disk full", errors.Unwrap(err).Error())
}

func TestParseKeepsRaw(t *testing.T) {
	err := Parse("no JSON object in model response", "I cannot help", nil)
	var classified *Error
	assert.True(t, errors.As(err, &classified))
	assert.Equal(t, "I cannot help", classified.Raw)
	assert.Equal(t, "parse", classified.ErrorKind())
}
