// Package todo owns the in-memory todo collection.
//
// A Manager exposes two tiers of operations. Mutations (Add, Delete, Toggle,
// Update) apply immediately and exist for instant feedback. Actions
// (AddAction, DeleteAction, ToggleAction, UpdateAction) validate, apply,
// persist and report the outcome as a model.ActionState; they never panic
// and never return errors.
package todo

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// Persister loads and saves the whole collection. Neither call reports
// failure; see jsonstore.Store.
type Persister interface {
	Load() model.Collection
	Save(model.Collection)
}

// Form is the submitted add form. url.Values satisfies it.
type Form interface {
	Get(key string) string
}

// FormField is the form field holding the new item's text.
const FormField = "todo"

// Messages reported when an action fails for reasons other than validation.
const (
	msgAddFailed    = "Failed to add todo"
	msgDeleteFailed = "Failed to delete todo"
	msgToggleFailed = "Failed to toggle todo"
	msgUpdateFailed = "Failed to update todo"
)

// Manager is the authoritative todo collection. It is safe for concurrent
// use; state transitions and the writes that persist them are serialized.
type Manager struct {
	mu       sync.Mutex
	todos    model.Collection
	lastID   int64
	store    Persister
	now      func() time.Time
	autosave bool
	dirty    bool // changes not yet handed to store
	log      *log.Logger

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
	closed  bool

	// pending snapshots, queued under mu so they keep the order of changes
	deliverMu  sync.Mutex
	queue      []model.Collection
	delivering bool
}

type subscription struct {
	id int
	fn func(model.Collection)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithAutosave controls whether plain mutations persist. Actions always do.
func WithAutosave(on bool) Option {
	return func(m *Manager) { m.autosave = on }
}

// WithLogger sets the logger for failed saves and observer panics.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// New builds a Manager and populates it once from store.
func New(store Persister, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		now:      time.Now,
		autosave: true,
		log:      logging.Discard(),
	}
	for _, o := range opts {
		o(m)
	}
	m.todos = store.Load().Clone()
	for _, it := range m.todos {
		if it.ID > m.lastID {
			m.lastID = it.ID
		}
	}
	m.log.Debug("manager ready", "count", len(m.todos), "autosave", m.autosave)
	return m
}

// Close writes any unsaved changes and drops every observer. A manager
// whose changes were all persisted does not write again.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.dirty {
		m.safeSave(m.todos)
		m.dirty = false
	}
	m.mu.Unlock()

	m.subMu.Lock()
	m.subs = nil
	m.closed = true
	m.subMu.Unlock()
}

// Todos returns a snapshot of the collection.
func (m *Manager) Todos() model.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.todos.Clone()
}

// Get returns the item with id.
func (m *Manager) Get(id int64) (model.TodoItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.todos.Index(id); i >= 0 {
		return m.todos[i], true
	}
	return model.TodoItem{}, false
}

// Len is the number of items.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.todos)
}

// nextID hands out millisecond timestamps, bumped past the last id so that
// ids stay strictly increasing when the clock stalls or steps back.
func (m *Manager) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return id
}

func (m *Manager) newItem(text string) model.TodoItem {
	now := m.now()
	return model.TodoItem{
		ID:        m.nextID(now),
		Text:      text,
		CreatedAt: model.FormatTime(now),
	}
}

// transition is a state change under m.mu. It reports whether anything changed.
type transition func(todos model.Collection) (model.Collection, bool)

// apply runs t and persists when asked. With strict set, a failed save
// restores the previous collection and id counter, so the change is reported
// as not made. Otherwise the change stays and is retried by the next save.
// Observers hear about every change that stays.
func (m *Manager) apply(t transition, persist, strict bool) (changed bool, err error) {
	func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		prev, prevID, prevDirty := m.todos, m.lastID, m.dirty
		next, ok := t(m.todos)
		if ok {
			m.todos = next
			m.dirty = true
		}
		if persist {
			if err = m.save(m.todos); err == nil {
				m.dirty = false
			} else if strict && ok {
				m.todos, m.lastID, m.dirty = prev, prevID, prevDirty
				ok = false
			}
		}
		if ok {
			m.enqueue(m.todos.Clone())
		}
		changed = ok
	}()
	if changed {
		m.drain()
	}
	return changed, err
}

// save hands todos to the store and turns a panic into an error.
func (m *Manager) save(todos model.Collection) (err error) {
	defer recoverInto(&err)
	m.store.Save(todos)
	return nil
}

// safeSave saves under the caller's lock and logs a failure.
func (m *Manager) safeSave(todos model.Collection) {
	if err := m.save(todos); err != nil {
		m.log.Error("save todos", "err", err)
	}
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("recovered: %v", r)
	}
}
