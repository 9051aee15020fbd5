package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"worktime/internal/store"
)

// DeviceRepository hands out the device fingerprint: a random UUID created on
// first use and persisted. It is a continuity token, not a credential.
type DeviceRepository interface {
	Fingerprint(ctx context.Context) (string, error)
}

type deviceRepository struct {
	mu sync.Mutex
	kv store.KV
}

// NewDeviceRepository creates a new DeviceRepository
func NewDeviceRepository(kv store.KV) DeviceRepository {
	return &deviceRepository{kv: kv}
}

func (r *deviceRepository) Fingerprint(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok, err := r.kv.Get(ctx, KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("failed to load device fingerprint: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := r.kv.Set(ctx, KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("failed to persist device fingerprint: %w", err)
	}
	return id, nil
}
