package todo

import "github.com/Makepad-fr/tada/internal/model"

// AddAction validates the form's todo field, appends a new item and persists.
// prev is the result of the previous submission; it does not influence the
// outcome. Every successful call creates a new item; a failed one adds nothing.
func (m *Manager) AddAction(prev model.ActionState, form Form) model.ActionState {
	var raw string
	if form != nil {
		raw = form.Get(FormField)
	}
	text, ok := model.NormalizeText(raw)
	if !ok {
		return model.Failed(model.ErrTextRequired.Error())
	}
	return m.act("add", msgAddFailed, m.addTransition(text))
}

// DeleteAction removes the item with id and persists. Absent ids succeed.
func (m *Manager) DeleteAction(id int64) model.ActionState {
	return m.act("delete", msgDeleteFailed, deleteTransition(id))
}

// ToggleAction flips completed on the item with id and persists.
func (m *Manager) ToggleAction(id int64) model.ActionState {
	return m.act("toggle", msgToggleFailed, toggleTransition(id))
}

// UpdateAction replaces the text of the item with id and persists.
func (m *Manager) UpdateAction(id int64, text string) model.ActionState {
	if _, ok := model.NormalizeText(text); !ok {
		return model.Failed(model.ErrTextEmpty.Error())
	}
	return m.act("update", msgUpdateFailed, updateTransition(id, text))
}

// act applies t and persists. A failed save leaves the collection as it was.
func (m *Manager) act(op, failMsg string, t transition) model.ActionState {
	changed, err := m.apply(t, true, true)
	if err != nil {
		m.log.Error("action failed", "op", op, "err", err)
		return model.Failed(failMsg)
	}
	m.log.Debug("action done", "op", op, "changed", changed)
	return model.OK()
}
