package todo

import (
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// Tentative is a mutation already applied for instant feedback and waiting
// for its commit. Commit persists the state as it is now; it does not apply
// the mutation a second time.
type Tentative struct {
	m       *Manager
	op      string
	id      int64
	failMsg string
	revert  func()

	once   sync.Once
	result model.ActionState
}

// TentativeToggle flips the item now. A failed commit flips it back.
func (m *Manager) TentativeToggle(id int64) *Tentative {
	m.Toggle(id)
	return &Tentative{
		m:       m,
		op:      "toggle",
		id:      id,
		failMsg: msgToggleFailed,
		revert:  func() { m.Toggle(id) },
	}
}

// TentativeDelete removes the item now. There is no revert: a failed commit
// is logged and the removal stays.
func (m *Manager) TentativeDelete(id int64) *Tentative {
	m.Delete(id)
	return &Tentative{
		m:       m,
		op:      "delete",
		id:      id,
		failMsg: msgDeleteFailed,
	}
}

// CommitOrRevert persists the collection and reports the outcome. On
// failure the revert runs, if there is one. Only the first call does work.
func (t *Tentative) CommitOrRevert() model.ActionState {
	t.once.Do(func() {
		t.result = t.commit()
		if t.result.Success {
			return
		}
		if t.revert == nil {
			t.m.log.Error("commit failed, keeping tentative change", "op", t.op, "id", t.id)
			return
		}
		t.m.log.Warn("commit failed, reverting", "op", t.op, "id", t.id)
		t.revert()
	})
	return t.result
}

func (t *Tentative) commit() model.ActionState {
	noop := func(todos model.Collection) (model.Collection, bool) { return todos, false }
	if _, err := t.m.apply(noop, true, true); err != nil {
		t.m.log.Error("commit", "op", t.op, "id", t.id, "err", err)
		return model.Failed(t.failMsg)
	}
	return model.OK()
}
