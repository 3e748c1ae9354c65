package todo

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Makepad-fr/tada/internal/kv"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

func textGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringMatching(`[ \t]{0,3}[A-Za-z0-9][A-Za-z0-9 ]{0,20}[ \t]{0,3}`),
		rapid.StringMatching(`[ \t]{0,5}`),
	)
}

func TestPropertyIDsUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clk := newClock()
		m := New(&fakeStore{}, WithClock(clk.now))
		n := rapid.IntRange(1, 50).Draw(t, "n")
		for i := 0; i < n; i++ {
			// clock may stall, jump forward or step back
			clk.advance(time.Duration(rapid.IntRange(-5, 5).Draw(t, "step")) * time.Millisecond)
			m.AddAction(model.ActionState{}, form("x"))
		}
		seen := map[int64]bool{}
		for _, it := range m.Todos() {
			if seen[it.ID] {
				t.Fatalf("duplicate id %d", it.ID)
			}
			seen[it.ID] = true
		}
		if len(seen) != n {
			t.Fatalf("got %d items, want %d", len(seen), n)
		}
	})
}

func TestPropertyAddTrimsOrRejects(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _ := bareManager()
		raw := textGen().Draw(t, "text")
		res := m.AddAction(model.ActionState{}, form(raw))
		want := strings.TrimSpace(raw)
		if want == "" {
			if res.Success || m.Len() != 0 {
				t.Fatalf("blank %q accepted", raw)
			}
			return
		}
		if !res.Success || m.Todos()[0].Text != want {
			t.Fatalf("add %q: got %+v %v", raw, res, texts(m.Todos()))
		}
	})
}

func TestPropertyToggleTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _ := bareManager()
		n := rapid.IntRange(1, 10).Draw(t, "n")
		for i := 0; i < n; i++ {
			m.Add("item")
		}
		before := m.Todos()
		id := before[rapid.IntRange(0, n-1).Draw(t, "pick")].ID
		m.ToggleAction(id)
		m.ToggleAction(id)
		after := m.Todos()
		for i := range before {
			if before[i] != after[i] {
				t.Fatalf("item %d changed: %+v -> %+v", i, before[i], after[i])
			}
		}
	})
}

// Random operation sequences keep the invariants: distinct ids, no blank
// text, insertion order, and the store always equal to memory.
func TestPropertyInvariantsUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mem := kv.NewMemory()
		store := jsonstore.New(mem)
		m := New(store, WithClock(newClock().now))

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		var order []int64
		for i := 0; i < ops; i++ {
			todos := m.Todos()
			pickID := func() int64 {
				if len(todos) == 0 || rapid.IntRange(0, 9).Draw(t, "absent") == 0 {
					return 1
				}
				return todos[rapid.IntRange(0, len(todos)-1).Draw(t, "idx")].ID
			}
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				if m.AddAction(model.ActionState{}, form(textGen().Draw(t, "add"))).Success {
					order = append(order, m.Todos()[m.Len()-1].ID)
				}
			case 1:
				id := pickID()
				m.DeleteAction(id)
				for j, o := range order {
					if o == id {
						order = append(order[:j], order[j+1:]...)
						break
					}
				}
			case 2:
				m.ToggleAction(pickID())
			case 3:
				m.UpdateAction(pickID(), textGen().Draw(t, "update"))
			}
		}

		todos := m.Todos()
		if len(todos) != len(order) {
			t.Fatalf("len %d, want %d", len(todos), len(order))
		}
		seen := map[int64]bool{}
		for i, it := range todos {
			if it.ID != order[i] {
				t.Fatalf("order changed at %d", i)
			}
			if seen[it.ID] {
				t.Fatalf("duplicate id %d", it.ID)
			}
			seen[it.ID] = true
			if strings.TrimSpace(it.Text) == "" || strings.TrimSpace(it.Text) != it.Text {
				t.Fatalf("bad text %q", it.Text)
			}
		}
		stored := store.Load()
		if len(stored) != len(todos) {
			t.Fatalf("store has %d items, memory %d", len(stored), len(todos))
		}
		for i := range todos {
			if stored[i] != todos[i] {
				t.Fatalf("store differs at %d: %+v vs %+v", i, stored[i], todos[i])
			}
		}
	})
}
