package engine

import "sync"

// buffer is an ordered, mutex-guarded FIFO of pending items. Producers
// only ever append; the flush loop is the only code path that removes
// items, always as a prefix, so insertion order survives end to end.
type buffer[T any] struct {
	mu    sync.Mutex
	items []T
}

func (b *buffer[T]) add(item T) {
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()
}

func (b *buffer[T]) addMany(items []T) {
	if len(items) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, items...)
	b.mu.Unlock()
}

// snapshot returns an independent copy of the current contents.
func (b *buffer[T]) snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

func (b *buffer[T]) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *buffer[T]) clear() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}

// drain atomically removes and returns the first limit items, or all
// items when limit is zero or exceeds the buffer length. Returns nil
// when the buffer is empty.
func (b *buffer[T]) drain(limit int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.items)
	if n == 0 {
		return nil
	}
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, n)
	copy(out, b.items[:n])
	rest := copy(b.items, b.items[n:])
	// Zero the tail so drained items do not outlive their delivery.
	var zero T
	for i := rest; i < len(b.items); i++ {
		b.items[i] = zero
	}
	b.items = b.items[:rest]
	return out
}
