package jsonstore

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/kv"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// JSON-backed storage of the whole collection under one key.
// It is a local cache, not a durability guarantee: Load and Save never fail,
// they log and degrade instead.

// StorageKey is the fixed key the collection lives under.
const StorageKey = "tada-todos"

//go:embed todos.schema.json
var schemaJSON string

const schemaURL = "todos.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func collectionSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat = true
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Store reads and writes the collection through a kv.Storage. A nil storage
// means the environment has none; every call is then a no-op.
type Store struct {
	storage kv.Storage
	key     string
	log     *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides StorageKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger that receives swallowed failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Store over storage; a nil storage makes every call a no-op.
func New(storage kv.Storage, opts ...Option) *Store {
	s := &Store{storage: storage, key: StorageKey, log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Available reports whether a storage is attached.
func (s *Store) Available() bool { return s.storage != nil }

// Key is the key the collection is stored under.
func (s *Store) Key() string { return s.key }

// Load returns the stored collection, or an empty one when the key is absent,
// the storage is unavailable or the stored value cannot be decoded.
func (s *Store) Load() model.Collection {
	if s.storage == nil {
		s.log.Debug("no storage, starting empty")
		return model.Collection{}
	}
	raw, ok, err := s.storage.GetItem(s.key)
	if err != nil {
		s.log.Warn("read todos", "key", s.key, "err", err)
		return model.Collection{}
	}
	if !ok {
		return model.Collection{}
	}
	items, err := Decode([]byte(raw))
	if err != nil {
		s.log.Warn("decode todos", "key", s.key, "err", err)
		return model.Collection{}
	}
	items, dropped := dedupe(items)
	if dropped > 0 {
		s.log.Warn("dropped todos with duplicate ids", "key", s.key, "count", dropped)
	}
	s.log.Debug("loaded todos", "key", s.key, "count", len(items))
	return items
}

// Save overwrites the stored value with the full collection.
func (s *Store) Save(items model.Collection) {
	if s.storage == nil {
		return
	}
	b, err := Encode(items)
	if err != nil {
		s.log.Warn("encode todos", "key", s.key, "err", err)
		return
	}
	if err := s.storage.SetItem(s.key, string(b)); err != nil {
		s.log.Warn("write todos", "key", s.key, "err", err)
		return
	}
	s.log.Debug("saved todos", "key", s.key, "count", len(items))
}

// Encode serializes a collection. A nil collection encodes as [].
func Encode(items model.Collection) ([]byte, error) {
	if items == nil {
		items = model.Collection{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses and validates a stored collection.
func Decode(b []byte) (model.Collection, error) {
	sch, err := collectionSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var items model.Collection
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = model.Collection{}
	}
	return items, nil
}

// dedupe keeps the first item for every id.
func dedupe(items model.Collection) (model.Collection, int) {
	seen := make(map[int64]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}
