package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode converts a payload into a caller-defined type by re-encoding it
// as JSON. Fields absent from the payload keep their zero values.
func Decode[T any](p Payload) (T, error) {
	var out T
	data, err := json.Marshal(p)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecodePayload, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecodePayload, err)
	}
	return out, nil
}
