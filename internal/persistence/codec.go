package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the version written into every saved collection.
// Version 0 is the legacy layout: a bare JSON array of records.
const SchemaVersion = 1

// ErrUnsupportedVersion marks a payload written by a newer schema.
var ErrUnsupportedVersion = errors.New("persistence: unsupported collection version")

type envelope struct {
	Version int             `json:"version"`
	Records json.RawMessage `json:"records"`
}

// EncodeCollection wraps records in a versioned envelope.
func EncodeCollection[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return json.Marshal(envelope{Version: SchemaVersion, Records: raw})
}

// DecodeCollection reads either a versioned envelope or a legacy bare
// array and returns the records with the version they were stored at.
func DecodeCollection[T any](data []byte) ([]T, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("persistence: empty payload")
	}

	var records []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, 0, fmt.Errorf("decode legacy records: %w", err)
		}
		return records, 0, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version > SchemaVersion {
		return nil, env.Version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Version < 1 {
		return nil, env.Version, fmt.Errorf("persistence: invalid collection version %d", env.Version)
	}
	if len(env.Records) == 0 || string(env.Records) == "null" {
		return []T{}, env.Version, nil
	}
	if err := json.Unmarshal(env.Records, &records); err != nil {
		return nil, env.Version, fmt.Errorf("decode records: %w", err)
	}
	return records, env.Version, nil
}
