package common

import "container/heap"

// PriorityQueue is a binary min-heap over arbitrary items. The ordering is
// supplied by the caller; Pop always returns an item for which no other
// queued item is less. Ties are resolved however less resolves them, so a
// deterministic less gives a deterministic pop order.
type PriorityQueue[T any] struct {
	h *heapSlice[T]
}

// NewPriorityQueue creates an empty queue ordered by less
func NewPriorityQueue[T any](less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{h: &heapSlice[T]{less: less}}
}

// Push inserts item in O(log n)
func (pq *PriorityQueue[T]) Push(item T) {
	heap.Push(pq.h, item)
}

// Pop removes and returns the least item. ok is false when the queue is empty.
func (pq *PriorityQueue[T]) Pop() (item T, ok bool) {
	if pq.h.Len() == 0 {
		return item, false
	}
	return heap.Pop(pq.h).(T), true
}

// Peek returns the least item without removing it
func (pq *PriorityQueue[T]) Peek() (item T, ok bool) {
	if pq.h.Len() == 0 {
		return item, false
	}
	return pq.h.items[0], true
}

// Len returns the number of queued items
func (pq *PriorityQueue[T]) Len() int {
	return pq.h.Len()
}

// Items returns a copy of the queued items in heap order (not sorted)
func (pq *PriorityQueue[T]) Items() []T {
	out := make([]T, len(pq.h.items))
	copy(out, pq.h.items)
	return out
}

// heapSlice adapts a slice to container/heap.Interface
type heapSlice[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *heapSlice[T]) Len() int           { return len(h.items) }
func (h *heapSlice[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *heapSlice[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *heapSlice[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *heapSlice[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	h.items = old[:n-1]
	return item
}
