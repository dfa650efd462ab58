package view

import "sync"

// ScrollMemory remembers the list view's scroll offset across navigation for
// the lifetime of the application. An offset of 0 means nothing is pending.
type ScrollMemory struct {
	mu     sync.Mutex
	offset int
}

// Capture records the offset when leaving the list view.
func (m *ScrollMemory) Capture(offset int) {
	if offset < 0 {
		offset = 0
	}
	m.mu.Lock()
	m.offset = offset
	m.mu.Unlock()
}

// Restore returns the pending offset once the bulk load has completed and
// clears it, so later calls report nothing to restore.
func (m *ScrollMemory) Restore(loaded bool) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !loaded || m.offset == 0 {
		return 0, false
	}
	offset := m.offset
	m.offset = 0
	return offset, true
}

// Offset returns the pending offset.
func (m *ScrollMemory) Offset() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset
}
