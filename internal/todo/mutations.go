package todo

import "github.com/Makepad-fr/tada/internal/model"

// Add appends an item with the trimmed text. Blank text is ignored so an
// item without text never exists.
func (m *Manager) Add(text string) {
	m.mutate("add", m.addTransition(text))
}

// Delete removes the item with id. Absent ids are ignored.
func (m *Manager) Delete(id int64) {
	m.mutate("delete", deleteTransition(id))
}

// Toggle flips completed on the item with id.
func (m *Manager) Toggle(id int64) {
	m.mutate("toggle", toggleTransition(id))
}

// Update replaces the text of the item with id. Blank text is ignored.
func (m *Manager) Update(id int64, text string) {
	m.mutate("update", updateTransition(id, text))
}

func (m *Manager) mutate(op string, t transition) {
	if _, err := m.apply(t, m.autosave, false); err != nil {
		m.log.Error("mutation failed", "op", op, "err", err)
	}
}

// addTransition must run under m.mu: it draws the next id.
func (m *Manager) addTransition(text string) transition {
	return func(todos model.Collection) (model.Collection, bool) {
		text, ok := model.NormalizeText(text)
		if !ok {
			return todos, false
		}
		return append(todos.Clone(), m.newItem(text)), true
	}
}

func deleteTransition(id int64) transition {
	return func(todos model.Collection) (model.Collection, bool) {
		i := todos.Index(id)
		if i < 0 {
			return todos, false
		}
		next := make(model.Collection, 0, len(todos)-1)
		next = append(next, todos[:i]...)
		next = append(next, todos[i+1:]...)
		return next, true
	}
}

func toggleTransition(id int64) transition {
	return func(todos model.Collection) (model.Collection, bool) {
		i := todos.Index(id)
		if i < 0 {
			return todos, false
		}
		next := todos.Clone()
		next[i].Completed = !next[i].Completed
		return next, true
	}
}

func updateTransition(id int64, text string) transition {
	return func(todos model.Collection) (model.Collection, bool) {
		text, ok := model.NormalizeText(text)
		if !ok {
			return todos, false
		}
		i := todos.Index(id)
		if i < 0 {
			return todos, false
		}
		next := todos.Clone()
		next[i].Text = text
		return next, true
	}
}
