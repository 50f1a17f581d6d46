package metrics

// ringBuffer is a fixed-capacity buffer that drops the oldest element on
// overflow. Not safe for concurrent use; the collector's lock guards it.
type ringBuffer[T any] struct {
	items []T
	head  int
	count int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	return &ringBuffer[T]{items: make([]T, capacity)}
}

// append adds v, overwriting the oldest element when full.
func (r *ringBuffer[T]) append(v T) {
	if r.count < len(r.items) {
		r.items[(r.head+r.count)%len(r.items)] = v
		r.count++
		return
	}
	r.items[r.head] = v
	r.head = (r.head + 1) % len(r.items)
}

// len returns the number of stored elements.
func (r *ringBuffer[T]) len() int {
	return r.count
}

// snapshot returns the stored elements oldest-first.
func (r *ringBuffer[T]) snapshot() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// tail returns up to n of the most recent elements, oldest-first.
func (r *ringBuffer[T]) tail(n int) []T {
	if n > r.count {
		n = r.count
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = r.items[(r.head+r.count-n+i)%len(r.items)]
	}
	return out
}
