package client

import (
	"errors"
	"net/http"
)

// DefaultErrorMessage is the RequestError message used when a failed
// response carries no usable "detail" field.
const DefaultErrorMessage = "request failed"

// Sentinel kinds for client errors. These allow errors.Is/As from callers.
var (
	ErrRequestFailed    = errors.New(DefaultErrorMessage)
	ErrBuildRequest     = errors.New("build request failed")
	ErrEncodePayload    = errors.New("encode payload failed")
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrDecodePayload    = errors.New("decode payload failed")
)

// RequestError is returned when the backend answers with a status outside
// the 2xx range. Error returns Message verbatim.
type RequestError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	// Payload is the decoded error body, empty when it was not a JSON object.
	Payload Payload
}

func (e *RequestError) Error() string {
	return e.Message
}

// Is makes every RequestError match ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// AsRequestError extracts a *RequestError from err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	re, ok := AsRequestError(err)
	return ok && re.StatusCode == http.StatusNotFound
}
