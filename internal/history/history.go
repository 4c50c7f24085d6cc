// Package history keeps a bounded in-memory window of the sentiment/price timeline.
package history

import (
	"sync"

	"botwatch-go/internal/market"
)

// Buffer is a mutex-guarded FIFO of series points with a fixed capacity.
// Appending beyond capacity evicts the oldest points.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	points   []market.SeriesPoint
}

// NewBuffer creates an empty buffer holding at most capacity points.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		points:   make([]market.SeriesPoint, 0, capacity),
	}
}

// Append adds points in order, evicting the oldest entries past capacity.
func (b *Buffer) Append(points ...market.SeriesPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.points = append(b.points, points...)
	if overflow := len(b.points) - b.capacity; overflow > 0 {
		b.points = append(b.points[:0], b.points[overflow:]...)
	}
}

// Snapshot returns a copy of the buffered points, oldest first.
func (b *Buffer) Snapshot() []market.SeriesPoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]market.SeriesPoint, len(b.points))
	copy(out, b.points)
	return out
}

// Len reports the number of buffered points.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.points)
}

// Reset clears all buffered points.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.points = b.points[:0]
	b.mu.Unlock()
}
