// Package apperr classifies failures so HTTP handlers and the capture client
// can map them to a status code and a user-facing message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindParse         Kind = "parse"
	KindStorage       Kind = "storage"
)

// Error is a classified failure. Raw keeps the model text for parse errors.
type Error struct {
	Kind    Kind
	Message string
	Raw     string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind returns the classification as a plain string.
func (e *Error) ErrorKind() string {
	return string(e.Kind)
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Configuration(message string) error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func Upstream(message string, err error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

func Parse(message, raw string, err error) error {
	return &Error{Kind: KindParse, Message: message, Raw: raw, Err: err}
}

func Storage(message string, err error) error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf returns the kind of the first classified error in the chain, or ""
// when the error is unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps validation failures to 400 and everything else to 500.
func HTTPStatus(err error) int {
	if Is(err, KindValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// MessageOf returns the classified message without the wrapped cause.
func MessageOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) && classified.Message != "" {
		return classified.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
