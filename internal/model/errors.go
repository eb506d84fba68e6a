package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
