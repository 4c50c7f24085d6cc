package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"botwatch-go/internal/market"
)

func TestWriterReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")

	writer, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}
	ts := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	writer.Record(market.Trade{ID: "1", Side: market.Buy, Qty: 0.5, Price: 25000, Fee: 0.1, Ts: ts})
	writer.Record(market.Trade{ID: "2", Side: market.Sell, Qty: 0.5, Price: 26000, Ts: ts.Add(time.Hour)})
	if err := writer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	trades, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Side != market.Buy || trades[0].Price != 25000 {
		t.Fatalf("unexpected first trade: %+v", trades[0])
	}
	if !trades[0].Ts.Equal(ts) {
		t.Fatalf("expected timestamp preserved, got %s", trades[0].Ts)
	}
}

func TestWriterSkipsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")

	writer, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}
	trade := market.Trade{ID: "7", Side: market.Buy, Qty: 1, Price: 100}
	writer.Record(trade)
	writer.Record(trade)
	if err := writer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	trades, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected duplicate suppressed, got %d trades", len(trades))
	}
}

func TestWriterReopenSkipsRecordedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	trades := []market.Trade{
		{ID: "1", Side: market.Buy, Qty: 1, Price: 100},
		{ID: "2", Side: market.Sell, Qty: 1, Price: 110},
	}

	writer, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}
	for _, trade := range trades {
		writer.Record(trade)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// a restarted monitor journals the full fetched history again
	writer, err = NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter reopen error: %v", err)
	}
	for _, trade := range trades {
		writer.Record(trade)
	}
	writer.Record(market.Trade{ID: "3", Side: market.Buy, Qty: 1, Price: 105})
	if err := writer.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	recorded, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(recorded) != 3 {
		t.Fatalf("expected 3 journaled trades after reopen, got %d", len(recorded))
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	content := `{"side":"BUY","qty":1,"price":100}
not json
{"side":"SELL","qty":1,"price":110}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	trades, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected malformed line skipped, got %d trades", len(trades))
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
