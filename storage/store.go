package storage

import "errors"

// ErrNotFound is returned by Get for a key with no stored value.
var ErrNotFound = errors.New("key not found")

// Store is the abstract key-value persistence adapter shared by the
// transports and the token lifecycle manager. It is the only shared mutable
// resource in the system; external locking is avoided by key ownership: the
// lifecycle manager is the sole writer of token keys, the transports are the
// sole writers of transient flow-state keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}
