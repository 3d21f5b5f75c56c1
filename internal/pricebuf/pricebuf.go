// Package pricebuf provides a bounded rolling window of prices.
// Appending beyond capacity evicts the oldest entry. A preallocated
// circular buffer keeps the append path allocation-free; Snapshot
// materializes the window oldest-first for indicator functions.
//
// The buffer itself is not goroutine-safe; the owning engine serializes
// access.
package pricebuf

// Buffer is a fixed-capacity rolling price window.
type Buffer struct {
	buf   []float64
	idx   int // next write position
	count int // total values appended
}

// New creates a buffer holding the most recent capacity prices.
// Minimum capacity is 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{buf: make([]float64, capacity)}
}

// Append records a new price, evicting the oldest when full.
func (b *Buffer) Append(price float64) {
	b.buf[b.idx] = price
	b.idx = (b.idx + 1) % len(b.buf)
	b.count++
}

// Len returns the number of prices currently held.
func (b *Buffer) Len() int {
	if b.count < len(b.buf) {
		return b.count
	}
	return len(b.buf)
}

// Cap returns the window capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Snapshot returns the window contents oldest-first as a fresh slice.
func (b *Buffer) Snapshot() []float64 {
	n := b.Len()
	out := make([]float64, n)
	if b.count < len(b.buf) {
		copy(out, b.buf[:n])
		return out
	}
	// Full: oldest entry sits at the write position.
	m := copy(out, b.buf[b.idx:])
	copy(out[m:], b.buf[:b.idx])
	return out
}

// Last returns the most recent price. Returns 0 if empty.
func (b *Buffer) Last() float64 {
	if b.count == 0 {
		return 0
	}
	i := b.idx - 1
	if i < 0 {
		i = len(b.buf) - 1
	}
	return b.buf[i]
}

// Reset clears the buffer for reuse.
func (b *Buffer) Reset() {
	b.idx = 0
	b.count = 0
}
