package usecase

import (
	"encoding/json"
	"fmt"
)

// Codec converts cached values to and from their stored text form.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(stored string) (T, error)
}

// TextCodec stores strings unchanged.
type TextCodec struct{}

// Encode returns value unchanged.
func (TextCodec) Encode(value string) (string, error) {
	return value, nil
}

// Decode returns stored unchanged.
func (TextCodec) Decode(stored string) (string, error) {
	return stored, nil
}

// StructuredCodec stores maps and slices as JSON.
//
// The round trip is lossy and callers must account for it: map keys always decode
// as plain strings (a map[int]string comes back as map[string]any with "1", "2"
// keys), nested maps decode as map[string]any, and numbers decode as float64.
// Values whose keys cannot be expressed as JSON object keys fail to encode.
type StructuredCodec struct{}

// Encode marshals value as JSON.
func (StructuredCodec) Encode(value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("structured codec: %w", err)
	}
	return string(b), nil
}

// Decode unmarshals stored JSON into generic maps and slices.
func (StructuredCodec) Decode(stored string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(stored), &value); err != nil {
		return nil, fmt.Errorf("structured codec: %w", err)
	}
	return value, nil
}

// JSONCodec stores a concrete type as JSON. Unlike StructuredCodec it round-trips
// exported struct fields without loss.
type JSONCodec[T any] struct{}

// Encode marshals value as JSON.
func (JSONCodec[T]) Encode(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("json codec: %w", err)
	}
	return string(b), nil
}

// Decode unmarshals stored JSON into T.
func (JSONCodec[T]) Decode(stored string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(stored), &value); err != nil {
		return value, fmt.Errorf("json codec: %w", err)
	}
	return value, nil
}
