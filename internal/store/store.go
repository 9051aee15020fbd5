package store

import "context"

// KV is the persistence substrate. Values are opaque strings, one per key.
type KV interface {
	// Get returns ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
