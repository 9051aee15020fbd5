package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"worktime/internal/store"
)

// Fixed keys of the persisted layout
const (
	KeyUser     = "wt_user"
	KeyDeviceID = "wt_device_id"
	KeyLogs     = "wt_logs"
)

var (
	// ErrCorruptRecord means a persisted record could not be decoded.
	// It is not retryable: the stored data needs manual recovery.
	ErrCorruptRecord = errors.New("corrupt persisted record")
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateID   = errors.New("record id already exists")
)

// loadJSON decodes the record under key into dst. ok=false if the key is unset.
func loadJSON(ctx context.Context, kv store.KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: key %q: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, kv store.KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, string(b))
}
