// Package kv defines the key-value store contract the repositories persist to,
// plus the in-process, file and postgres backends. The redis backend lives in
// internal/redis.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnchanged is returned from an Update or Mutate fn to skip the write
	// and its notification. Mutate reports it as success.
	ErrUnchanged = errors.New("kv: value unchanged")
)

// Listener is called with the changed key. It must not block.
type Listener func(key string)

// Store is a string-keyed store of JSON documents with change notification.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update performs a read-modify-write of one key as a single critical
	// section. fn receives nil when the key is missing; returning an error
	// aborts the write.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error

	// Subscribe registers l for changes to any of keys, including changes made
	// by other processes sharing the backend. The returned func unsubscribes.
	Subscribe(ctx context.Context, l Listener, keys ...string) (func(), error)

	Close() error
}

// Keys namespaces the persisted layout under a fixed application prefix.
type Keys struct {
	Prefix string
}

func (k Keys) TVs() string    { return k.Prefix + "tvs" }
func (k Keys) Events() string { return k.Prefix + "events" }
func (k Keys) User() string   { return k.Prefix + "user" }

// Config is the per-TV demo marker key.
func (k Keys) Config(slug string) string { return k.Prefix + "config-" + slug }

// Decode unmarshals raw into dst, falling back to def when raw is empty, JSON
// null or corrupt. Corrupt values are logged and never surfaced.
func Decode[T any](key string, raw []byte, def T) T {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def
	}
	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		log.Error().Err(err).Str("key", key).Msg("corrupt value in store, using default")
		return def
	}
	return out
}

// Load reads key and decodes it, returning def on any read or parse failure.
func Load[T any](ctx context.Context, s Store, key string, def T) T {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("key", key).Msg("failed to read key, using default")
		}
		return def
	}
	return Decode(key, raw, def)
}

// Save encodes v and writes it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Mutate decodes the current value of key (def when absent or corrupt), lets fn
// change it and writes it back inside the store's critical section. fn returns
// ErrUnchanged to leave the key untouched.
func Mutate[T any](ctx context.Context, s Store, key string, def T, fn func(T) (T, error)) error {
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		next, err := fn(Decode(key, current, def))
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		return raw, nil
	})
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	return err
}
