package governance

import (
	"sync"

	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/google/uuid"
)

// SelectionTracker maintains the set of assignment IDs marked for a bulk
// operation. Selection is keyed by stable assignment identity, never by a
// display position, and is cleared whenever the underlying assignment
// collection changes structurally, since the old selection may then refer
// to rows that no longer exist.
type SelectionTracker struct {
	mu       sync.RWMutex
	selected map[uuid.UUID]bool
}

// NewSelectionTracker creates an empty selection tracker
func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{
		selected: make(map[uuid.UUID]bool),
	}
}

// Select adds an assignment to the selection
func (t *SelectionTracker) Select(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected[id] = true
}

// Deselect removes an assignment from the selection
func (t *SelectionTracker) Deselect(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.selected, id)
}

// SelectAllActive replaces the selection with every active assignment
func (t *SelectionTracker) SelectAllActive(assignments []*chapter.BoardAssignment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = make(map[uuid.UUID]bool, len(assignments))
	for _, a := range assignments {
		if a.IsActive {
			t.selected[a.ID] = true
		}
	}
}

// Clear empties the selection
func (t *SelectionTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = make(map[uuid.UUID]bool)
}

// IsSelected reports whether an assignment is in the selection
func (t *SelectionTracker) IsSelected(id uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selected[id]
}

// Count returns the selection size
func (t *SelectionTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.selected)
}

// Selected returns a copy of the selected assignment IDs
func (t *SelectionTracker) Selected() []uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	return ids
}
