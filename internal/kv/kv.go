// Package kv provides synchronous, string-keyed, string-valued stores scoped
// to the local client. They play the part browser local storage plays for a
// web client: small, whole-value reads and writes, no partial updates.
package kv

import (
	"errors"
	"fmt"
	"strings"
)

// Storage is a local key-value store. Implementations are safe for
// concurrent use.
type Storage interface {
	// GetItem returns the value under key. ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	// SetItem overwrites the value under key.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Backends lists every backend name, for help and error messages.
var Backends = []string{BackendFile, BackendSQLite, BackendMemory, BackendNone}

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrClosed         = errors.New("storage closed")
)

// Open returns the storage for backend rooted at dataDir. BackendNone yields
// a nil Storage: callers treat that as "no store in this environment".
func Open(backend, dataDir string) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendFile, "":
		f, err := OpenFile(dataDir)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendSQLite:
		s, err := OpenSQLite(dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendNone:
		return nil, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownBackend, backend, strings.Join(Backends, ", "))
}
