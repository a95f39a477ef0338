// Package session keeps the authenticated patient on the device across
// restarts. DeviceStorage is the string key/value store the platform offers;
// Store layers the session semantics on top of it.
package session

import "context"

type DeviceStorage interface {
	// GetItem returns ok=false when key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// SetItems writes all pairs or none.
	SetItems(ctx context.Context, items map[string]string) error
	// RemoveItems removes all keys or none.
	RemoveItems(ctx context.Context, keys ...string) error
}
