package history

import (
	"testing"
	"time"

	"botwatch-go/internal/market"
)

func point(price float64) market.SeriesPoint {
	return market.SeriesPoint{Ts: time.Now(), Price: price}
}

func TestBufferAppendSnapshot(t *testing.T) {
	buf := NewBuffer(4)
	buf.Append(point(1), point(2))

	snap := buf.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 points, got %d", len(snap))
	}
	if snap[0].Price != 1 || snap[1].Price != 2 {
		t.Fatalf("unexpected ordering: %+v", snap)
	}

	buf.Reset()
	if buf.Len() != 0 {
		t.Fatalf("expected buffer reset")
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	buf := NewBuffer(3)
	buf.Append(point(1), point(2), point(3), point(4), point(5))

	snap := buf.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected capacity cap of 3, got %d", len(snap))
	}
	if snap[0].Price != 3 || snap[2].Price != 5 {
		t.Fatalf("expected oldest evicted, got %+v", snap)
	}
}

func TestBufferMinimumCapacity(t *testing.T) {
	buf := NewBuffer(0)
	buf.Append(point(1), point(2))
	if buf.Len() != 1 {
		t.Fatalf("expected capacity floor of 1, got %d", buf.Len())
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	buf := NewBuffer(2)
	buf.Append(point(1))
	snap := buf.Snapshot()
	snap[0].Price = 99
	if buf.Snapshot()[0].Price != 1 {
		t.Fatalf("snapshot should not alias internal storage")
	}
}
