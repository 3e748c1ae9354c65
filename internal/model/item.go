package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// TimeLayout is the createdAt format: ISO-8601, UTC, millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// TodoItem is the domain model for a todo entry.
type TodoItem struct {
	ID        int64  `json:"id" yaml:"id" toml:"id"`
	Text      string `json:"text" yaml:"text" toml:"text"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
	CreatedAt string `json:"createdAt" yaml:"createdAt" toml:"createdAt"`
}

// FormatTime renders t the way CreatedAt is stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Collection is the ordered list of items. New items go at the end and
// no operation reorders siblings.
type Collection []TodoItem

// Index returns the position of id, or -1.
func (c Collection) Index(id int64) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares nothing with c. A nil collection clones
// to an empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Stats counts completed and pending items.
func (c Collection) Stats() (done, pending int) {
	for _, it := range c {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Validation errors surfaced to users through ActionState.
var (
	ErrTextRequired = errors.New("Todo text is required")
	ErrTextEmpty    = errors.New("Todo text cannot be empty")
)

// NormalizeText trims surrounding whitespace, byte order marks included, and
// reports whether anything is left.
func NormalizeText(s string) (string, bool) {
	s = strings.TrimFunc(s, isBlank)
	return s, s != ""
}

func isBlank(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' }
