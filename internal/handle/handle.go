// Package handle implements a fixed-capacity registry that maps opaque
// integer tokens to resident values.
//
// Slot 0 is reserved so the zero token is never valid. Every token carries
// the generation of its slot; releasing a slot bumps the generation, so a
// stale token cannot reach a value allocated later into the same slot.
package handle

import (
	"errors"
	"sync"
)

// DefaultCapacity is the number of slots, including the reserved slot 0.
const DefaultCapacity = 16

// MaxCapacity is the largest table New creates. Slot numbers occupy the low
// eight bits of a handle.
const MaxCapacity = slotMask + 1

const (
	slotBits = 8
	slotMask = 1<<slotBits - 1
	maxGen   = 1<<(31-slotBits) - 1
)

var (
	// ErrExhausted is returned by Allocate when every slot is in use.
	ErrExhausted = errors.New("handle: table exhausted")

	// ErrInvalid is returned for tokens that do not name a live slot.
	ErrInvalid = errors.New("handle: invalid handle")
)

type slot[T any] struct {
	value T
	gen   int
	live  bool
}

// Table is a generation-checked slot table. It is safe for concurrent use.
type Table[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
}

// New creates a table with capacity slots. Capacities below 2 or above
// MaxCapacity are clamped into that range.
func New[T any](capacity int) *Table[T] {
	capacity = min(max(capacity, 2), MaxCapacity)
	return &Table[T]{slots: make([]slot[T], capacity)}
}

// Allocate stores v in the lowest free slot and returns its token.
func (t *Table[T]) Allocate(v T) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 1; i < len(t.slots); i++ {
		s := &t.slots[i]
		if s.live {
			continue
		}
		s.value = v
		s.live = true
		return encode(i, s.gen), nil
	}
	return 0, ErrExhausted
}

// Lookup returns the value stored under token h.
func (t *Table[T]) Lookup(h int) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.resolve(h)
	if !ok {
		var zero T
		return zero, ErrInvalid
	}
	return s.value, nil
}

// Release frees the slot named by h and returns the value it held.
func (t *Table[T]) Release(h int) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, ok := t.resolve(h)
	if !ok {
		return zero, ErrInvalid
	}
	v := s.value
	s.value = zero
	s.live = false
	s.gen = (s.gen + 1) & maxGen
	return v, nil
}

// Len returns the number of live slots.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i].live {
			n++
		}
	}
	return n
}

// Capacity returns the number of usable slots.
func (t *Table[T]) Capacity() int {
	return len(t.slots) - 1
}

// Each calls fn for every live slot in slot order. fn must not call back into t.
func (t *Table[T]) Each(fn func(h int, v T)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 1; i < len(t.slots); i++ {
		if s := t.slots[i]; s.live {
			fn(encode(i, s.gen), s.value)
		}
	}
}

// Caller must hold t.mu.
func (t *Table[T]) resolve(h int) (*slot[T], bool) {
	if h <= 0 {
		return nil, false
	}
	i, gen := h&slotMask, h>>slotBits
	if i == 0 || i >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[i]
	if !s.live || s.gen != gen {
		return nil, false
	}
	return s, true
}

func encode(i, gen int) int {
	return i | gen<<slotBits
}
