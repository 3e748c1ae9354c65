package todo

import "github.com/Makepad-fr/tada/internal/model"

// Subscribe registers fn to receive a snapshot after every change. Observers
// run in subscription order, outside the manager lock, so they may call back
// into the manager. Snapshots arrive one at a time in the order the changes
// were made: a change made while another goroutine is delivering is handed
// to that goroutine. The returned func cancels the subscription.
func (m *Manager) Subscribe(fn func(model.Collection)) (cancel func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.closed || fn == nil {
		return func() {}
	}
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// enqueue must run under m.mu.
func (m *Manager) enqueue(snapshot model.Collection) {
	m.deliverMu.Lock()
	m.queue = append(m.queue, snapshot)
	m.deliverMu.Unlock()
}

// drain delivers queued snapshots unless another call is already doing so.
func (m *Manager) drain() {
	m.deliverMu.Lock()
	if m.delivering {
		m.deliverMu.Unlock()
		return
	}
	m.delivering = true
	for len(m.queue) > 0 {
		snapshot := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.deliverMu.Unlock()
		m.notify(snapshot)
		m.deliverMu.Lock()
	}
	m.queue = nil
	m.delivering = false
	m.deliverMu.Unlock()
}

// notify calls every observer. A panic is logged and the remaining
// observers still run; the change itself is already made.
func (m *Manager) notify(snapshot model.Collection) {
	m.subMu.Lock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	for _, s := range subs {
		var err error
		func() {
			defer recoverInto(&err)
			s.fn(snapshot.Clone())
		}()
		if err != nil {
			m.log.Error("observer panicked", "sub", s.id, "err", err)
		}
	}
}
