// Package journal persists fetched trades as JSON lines for offline analysis.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"botwatch-go/internal/market"
)

// entry is the on-disk representation of one trade.
type entry struct {
	ID    string  `json:"id,omitempty"`
	Side  string  `json:"side"`
	Qty   float64 `json:"qty"`
	Price float64 `json:"price"`
	Fee   float64 `json:"fee,omitempty"`
	Ts    int64   `json:"ts,omitempty"` // unix millis
}

// Writer appends trades to a JSONL file.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	seen map[string]struct{}
}

// NewWriter creates/opens the target file and returns a writer. IDs already
// present in the file are loaded into the dedupe set, so reopening the journal
// after a restart does not re-append the backend's full history.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	if existing, err := Read(path); err == nil {
		for _, t := range existing {
			if t.ID != "" {
				seen[t.ID] = struct{}{}
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{
		file: file,
		enc:  json.NewEncoder(file),
		seen: seen,
	}, nil
}

// Record appends a single trade. Trades with an ID already journaled are
// skipped, so repeated history polls do not duplicate lines.
func (w *Writer) Record(t market.Trade) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t.ID != "" {
		if _, dup := w.seen[t.ID]; dup {
			return
		}
		w.seen[t.ID] = struct{}{}
	}
	var ts int64
	if !t.Ts.IsZero() {
		ts = t.Ts.UnixMilli()
	}
	_ = w.enc.Encode(entry{
		ID:    t.ID,
		Side:  string(t.Side),
		Qty:   t.Qty,
		Price: t.Price,
		Fee:   t.Fee,
		Ts:    ts,
	})
}

// Close flushes and closes the file handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Read loads all trades from a JSONL file, in file order. Lines that fail to
// decode are skipped.
func Read(path string) ([]market.Trade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	var trades []market.Trade
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		var ts time.Time
		if e.Ts > 0 {
			ts = time.UnixMilli(e.Ts).UTC()
		}
		trades = append(trades, market.Trade{
			ID:    e.ID,
			Side:  market.Side(e.Side),
			Qty:   e.Qty,
			Price: e.Price,
			Fee:   e.Fee,
			Ts:    ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return trades, nil
}
