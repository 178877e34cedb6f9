package services

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported file type, please upload a PDF or DOCX")
	ErrExtractionFailure   = errors.New("could not extract text from document")
	ErrProviderUnavailable = errors.New("no model credential configured")
	ErrProviderError       = errors.New("generation failed")
	ErrMalformedJSON       = errors.New("model output is not valid JSON")
	ErrSchemaMismatch      = errors.New("model output does not match the expected shape")
	ErrNotFound            = errors.New("not found")
	ErrPaymentRequired     = errors.New("payment required")
	ErrInvalidToken        = errors.New("invalid download token")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrRenderFailure       = errors.New("document rendering failed")
)

const (
	msgUnusableResponse = "the model returned an unusable response"
	msgCancelled        = "request cancelled"
	msgInternal         = "something went wrong, please try again"
)

var userFacing = []error{
	ErrUnsupportedFormat,
	ErrExtractionFailure,
	ErrProviderUnavailable,
	ErrProviderError,
	ErrNotFound,
	ErrPaymentRequired,
	ErrInvalidToken,
	ErrInvalidSignature,
	ErrRenderFailure,
}

// UserMessage returns the short message shown to clients for err. Wrapped
// detail such as provider or database text stays in the logs.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMalformedJSON), errors.Is(err, ErrSchemaMismatch):
		return msgUnusableResponse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return msgCancelled
	}

	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return msgInternal
}

// ValidationFailure carries the raw model payload that failed validation so
// terminal errors can be logged with it.
type ValidationFailure struct {
	Kind SchemaKind
	Raw  string
	Err  error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ValidationFailure) Unwrap() error {
	return e.Err
}

// RawPayload returns the raw model output attached anywhere in err's chain.
func RawPayload(err error) (string, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf.Raw, true
	}
	return "", false
}
