// Package cache defines the store contract shared by the in-memory and
// Redis-backed implementations.
package cache

// Interface is the payload store used by the search engine. Values are
// opaque serialized payloads; expiry and capacity are the implementation's
// concern.
type Interface interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte)
	Delete(keys ...string)
	Clear()
	Len() int
}
