package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order intake.
var (
	ErrMissingCredential = errors.New("partner API key is not configured")
	ErrInvalidBody       = errors.New("invalid JSON body")
	ErrNoItems           = errors.New("no items provided")
	ErrMissingShipping   = errors.New("missing shipping address")
)

// ValidationError reports the first schema violation of a request.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DecodeError is a payload that is valid JSON but does not fit the request
// schema. It matches ErrInvalidBody.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return ErrInvalidBody.Error() + ": " + e.Err.Error()
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidBody
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-success response from the partner API. Body is the
// raw response text.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("partner responded with status %d", e.Status)
}
