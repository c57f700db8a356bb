package projections

import "context"

// KVReader is the read side of the device-scoped key-value store. *kv.Store satisfies it.
type KVReader interface {
	Lookup(ctx context.Context, key string, dst any) bool
}
