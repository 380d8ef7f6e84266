package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nakachan-ing/daytask/internal/logger"
)

const (
	TasksKey    = "tasks"
	ProgressKey = "progress"

	// SchemaVersion is written into every envelope. Unversioned bare arrays
	// are read as version 0.
	SchemaVersion = 1
)

var (
	ErrNotFound           = errors.New("key not found")
	ErrUnsupportedVersion = errors.New("unsupported schema version")
)

// Store persists whole collections by key. Write replaces the stored value
// in one step; a failed Write leaves the previous value in place.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

type envelope[T any] struct {
	Version int `json:"version"`
	Records []T `json:"records"`
}

// DecodeCollection parses either the versioned envelope or a legacy bare array.
func DecodeCollection[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}

	if data[0] == '[' {
		var records []T
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse legacy collection: %w", err)
		}
		if records == nil {
			records = []T{}
		}
		return records, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse collection: %w", err)
	}
	if env.Version < 1 || env.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Records == nil {
		env.Records = []T{}
	}
	return env.Records, nil
}

// EncodeCollection serializes records into the current envelope.
func EncodeCollection[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(envelope[T]{Version: SchemaVersion, Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to convert to JSON: %w", err)
	}
	return data, nil
}

// ReadCollection never fails. Anything it cannot read comes back as an
// empty collection, and everything except a missing key is logged.
func ReadCollection[T any](ctx context.Context, s Store, key string, log *logger.Logger) []T {
	data, err := s.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}
	}
	if err != nil {
		log.Errorw("failed to read collection", "key", key, "error", err)
		return []T{}
	}

	records, err := DecodeCollection[T](data)
	if err != nil {
		log.Errorw("malformed collection, treating as empty", "key", key, "error", err)
		return []T{}
	}
	return records
}

// WriteCollection replaces the whole collection. If encoding fails nothing is
// written; the returned error is the only confirmation the caller gets.
func WriteCollection[T any](ctx context.Context, s Store, key string, records []T) error {
	data, err := EncodeCollection(records)
	if err != nil {
		return err
	}
	if err := s.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
