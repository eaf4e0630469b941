package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNoValue is returned by LoadCompressed when the key is absent.
var ErrNoValue = errors.New("no value stored")

// Gzip compresses data with the gzip format.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Gunzip decompresses gzip data.
func Gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return out, nil
}

// Encode marshals v to JSON, gzips it and returns standard base64 text.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	compressed, err := Gzip(raw)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(compressed), nil
}

// Decode reverses Encode into dst.
func Decode(text string, dst any) error {
	compressed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return fmt.Errorf("base64: %w", err)
	}
	raw, err := Gunzip(compressed)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// SaveCompressed stores v under key in compressed form.
func SaveCompressed(ctx context.Context, kv KV, key string, v any) error {
	text, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, text)
}

// LoadCompressed reads key into dst. It returns ErrNoValue when the key is
// absent.
func LoadCompressed(ctx context.Context, kv KV, key string, dst any) error {
	text, ok, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || text == "" {
		return ErrNoValue
	}
	if err := Decode(text, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// LoadOrDefault reads key into a fresh T. A missing key or any read, decode
// or parse failure yields def; failures are logged, never returned.
func LoadOrDefault[T any](ctx context.Context, kv KV, key string, def T, logger *slog.Logger) T {
	if logger == nil {
		logger = slog.Default()
	}
	return LoadOrDefaultFunc(ctx, kv, key, def, func(err error) {
		logger.Error("failed to load stored value, using default", "key", key, "error", err)
	})
}

// LoadOrDefaultFunc is LoadOrDefault with a caller-supplied failure
// handler. onError is not called for a missing key.
func LoadOrDefaultFunc[T any](ctx context.Context, kv KV, key string, def T, onError func(error)) T {
	var v T
	err := LoadCompressed(ctx, kv, key, &v)
	switch {
	case err == nil:
		return v
	case errors.Is(err, ErrNoValue):
		return def
	default:
		if onError != nil {
			onError(err)
		}
		return def
	}
}
