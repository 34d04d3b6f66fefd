package ring

// Buffer is a fixed-capacity FIFO buffer. Pushing into a full buffer evicts
// the oldest element. Insertion order is preserved and never re-sorted, so a
// buffer fed chronologically stays chronological.
type Buffer[T any] struct {
	items    []T
	capacity int
}

// New creates a buffer holding at most capacity elements.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, 0, capacity), capacity: capacity}
}

// Push appends v, dropping the oldest element when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items[len(b.items)-1] = v
		return
	}
	b.items = append(b.items, v)
}

// Len returns the number of buffered elements.
func (b *Buffer[T]) Len() int { return len(b.items) }

// Capacity returns the maximum number of elements the buffer retains.
func (b *Buffer[T]) Capacity() int { return b.capacity }

// At returns the element at index i, oldest first. Callers must bound i
// with Len.
func (b *Buffer[T]) At(i int) T { return b.items[i] }

// Last returns the most recently pushed element, or false when empty.
func (b *Buffer[T]) Last() (T, bool) {
	if len(b.items) == 0 {
		var zero T
		return zero, false
	}
	return b.items[len(b.items)-1], true
}

// Items returns a copy of the buffered elements, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}
