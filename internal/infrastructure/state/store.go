package state

import (
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// PathWildcard is the path reported to subscribers when the whole tree
// changed at once, as after RestoreSnapshot.
const PathWildcard = "*"

// DefaultHistoryCapacity bounds the undo history when no explicit
// capacity is configured.
const DefaultHistoryCapacity = 10

// Change describes a single applied mutation, delivered to subscribers.
// An Undo delivers the reverting change with old and new values swapped.
type Change struct {
	Path     string
	NewValue any
	OldValue any
}

// Write is one entry of a BatchUpdate
type Write struct {
	Path  string
	Value any
}

// Subscriber receives change notifications. Callbacks run synchronously
// in subscription order before the mutating call returns.
type Subscriber func(change Change)

type subscription struct {
	id int
	fn Subscriber
}

// historyEntry records a tracked change plus whether the path existed
// before it, so Undo can restore absence instead of writing nil back.
type historyEntry struct {
	change Change
	hadOld bool
}

// Store holds a nested keyed state tree with path-based access, change
// notification, bounded undo history and advisory loading flags. Paths
// are dot-separated: "chapter.boardMembers" addresses tree["chapter"]["boardMembers"].
//
// The store is the single shared mutable resource of the governance
// layer; all reads and writes go through its API. It does not enforce
// mutual exclusion between operations, the loading flags are hints for
// caller-level re-entrancy guards only.
type Store struct {
	mu      sync.RWMutex
	tree    map[string]any
	history []historyEntry
	cap     int

	subMu  sync.Mutex
	subs   []subscription
	nextID int

	loadMu  sync.Mutex
	loading map[string]bool

	logger *zap.Logger
}

// NewStore creates a store with the given undo history capacity.
// A capacity of zero or less falls back to DefaultHistoryCapacity.
func NewStore(logger *zap.Logger, historyCapacity int) *Store {
	if historyCapacity <= 0 {
		historyCapacity = DefaultHistoryCapacity
	}
	return &Store{
		tree:    make(map[string]any),
		cap:     historyCapacity,
		loading: make(map[string]bool),
		logger:  logger,
	}
}

// Get reads a nested value by dot-separated path. The second return
// value reports whether the path exists; absent paths never error.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var node any = s.tree
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Update writes a value at the path, creating intermediate maps as
// needed, and notifies all subscribers before returning. If
// trackHistory is set the change is pushed onto the bounded undo
// history, discarding the oldest entry when full.
func (s *Store) Update(path string, value any, trackHistory bool) {
	s.mu.Lock()
	old, existed := s.set(path, value)
	change := Change{Path: path, NewValue: value, OldValue: old}
	if trackHistory {
		s.pushHistory(historyEntry{change: change, hadOld: existed})
	}
	s.mu.Unlock()

	s.notify(change)
}

// BatchUpdate applies all writes before any notification goes out, so
// a subscriber never observes a half-applied batch. Notifications are
// delivered in input order and every write is tracked for undo.
func (s *Store) BatchUpdate(writes []Write) {
	if len(writes) == 0 {
		return
	}

	changes := make([]Change, 0, len(writes))
	s.mu.Lock()
	for _, w := range writes {
		old, existed := s.set(w.Path, w.Value)
		change := Change{Path: w.Path, NewValue: w.Value, OldValue: old}
		s.pushHistory(historyEntry{change: change, hadOld: existed})
		changes = append(changes, change)
	}
	s.mu.Unlock()

	for _, change := range changes {
		s.notify(change)
	}
}

// Subscribe registers a callback and returns its unsubscribe function.
// Calling unsubscribe more than once is harmless.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Undo reverts the most recent tracked change and notifies subscribers
// with old and new values swapped. A change that created the path is
// reverted by deleting it again, so Get reports it absent. Returns
// false when the history is empty. The revert itself is not tracked.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	if last.hadOld {
		s.set(last.change.Path, last.change.OldValue)
	} else {
		s.unset(last.change.Path)
	}
	s.mu.Unlock()

	s.notify(Change{Path: last.change.Path, NewValue: last.change.OldValue, OldValue: last.change.NewValue})
	return true
}

// HistoryLen reports the number of undoable changes currently held
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// SetLoading sets the advisory loading flag for an operation name
func (s *Store) SetLoading(operation string, loading bool) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if loading {
		s.loading[operation] = true
	} else {
		delete(s.loading, operation)
	}
}

// IsLoading reports the advisory loading flag for an operation name
func (s *Store) IsLoading(operation string) bool {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loading[operation]
}

// Snapshot returns a deep copy of the whole tree
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopyMap(s.tree)
}

// RestoreSnapshot replaces the whole tree with a deep copy of the
// snapshot and notifies subscribers once with the wildcard path. The
// undo history is cleared, entries referring to the discarded tree
// would revert into the wrong state.
func (s *Store) RestoreSnapshot(snapshot map[string]any) {
	s.mu.Lock()
	old := s.tree
	s.tree = deepCopyMap(snapshot)
	s.history = s.history[:0]
	restored := s.tree
	s.mu.Unlock()

	s.notify(Change{Path: PathWildcard, NewValue: restored, OldValue: old})
}

// set walks the path, creating intermediate maps, and returns the old
// leaf value and whether it existed. Caller holds s.mu. A non-map
// intermediate value is overwritten by a fresh map, the write always
// lands.
func (s *Store) set(path string, value any) (any, bool) {
	keys := strings.Split(path, ".")
	node := s.tree
	for _, key := range keys[:len(keys)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[key] = child
		}
		node = child
	}
	leaf := keys[len(keys)-1]
	old, existed := node[leaf]
	node[leaf] = value
	return old, existed
}

// unset deletes the leaf at the path. Intermediate maps are left in
// place; Get still reports the leaf absent. Caller holds s.mu.
func (s *Store) unset(path string) {
	keys := strings.Split(path, ".")
	node := s.tree
	for _, key := range keys[:len(keys)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, keys[len(keys)-1])
}

// pushHistory appends an entry, discarding the oldest when at capacity.
// Caller holds s.mu.
func (s *Store) pushHistory(entry historyEntry) {
	if len(s.history) >= s.cap {
		s.history = append(s.history[:0], s.history[1:]...)
	}
	s.history = append(s.history, entry)
}

// notify delivers a change to all subscribers in subscription order.
// A panicking subscriber is logged and skipped, it never affects the
// other subscribers or the mutating caller.
func (s *Store) notify(change Change) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		s.safeInvoke(sub, change)
	}
}

func (s *Store) safeInvoke(sub subscription, change Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state subscriber panicked",
				zap.String("path", change.Path),
				zap.Any("panic", r),
			)
		}
	}()
	sub.fn(change)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue copies maps and slices so a snapshot never shares a
// backing container with the live tree. Typed slices get a fresh
// backing array with elements copied by value; pointer fields inside
// those elements are still shared, stored values are treated as
// immutable once written.
func deepCopyValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
			reflect.Copy(out, rv)
			return out.Interface()
		}
		return v
	}
}
