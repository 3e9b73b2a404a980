package storage

import "errors"

var ErrClosed = errors.New("storage closed")

// KV is a small string key/value store with browser localStorage semantics:
// values survive restarts and are only removed by an explicit Delete.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
