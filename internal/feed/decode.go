package feed

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"botwatch-go/internal/market"
)

// The backend has gone through several payload revisions with different field
// names; the decoders below accept every alias still in the wild.

// flexNumber decodes JSON numbers and numeric strings; anything else is zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	*n = 0
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		s = strings.TrimSpace(raw)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = flexNumber(f)
	}
	return nil
}

// flexString decodes JSON strings and bare numbers into a string, so backends
// with either numeric or opaque trade IDs keep a stable identity.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(raw)
	return nil
}

// flexTime decodes epoch seconds, epoch millis, or common timestamp strings.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	*t = flexTime(time.Time{})
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		*t = flexTime(parseTimeString(raw))
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*t = flexTime(epochToTime(f))
	}
	return nil
}

func (t flexTime) value() time.Time { return time.Time(t) }

// epochToTime treats values under 1e12 as seconds, larger ones as millis.
func epochToTime(v float64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v < 1e12 {
		sec := int64(v)
		nsec := int64((v - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	}
	return time.UnixMilli(int64(v)).UTC()
}

func parseTimeString(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return epochToTime(f)
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

type tradeRow struct {
	ID        flexString `json:"id"`
	Side      string     `json:"side"`
	Type      string     `json:"type"`
	Action    string     `json:"action"`
	Qty       flexNumber `json:"qty"`
	Size      flexNumber `json:"size"`
	Price     flexNumber `json:"price"`
	P         flexNumber `json:"p"`
	Fee       flexNumber `json:"fee"`
	F         flexNumber `json:"f"`
	Time      flexTime   `json:"time"`
	Ts        flexTime   `json:"ts"`
	T         flexTime   `json:"t"`
	Timestamp flexTime   `json:"timestamp"`
}

func (r tradeRow) toTrade() market.Trade {
	side := r.Side
	if side == "" {
		side = r.Type
	}
	if side == "" {
		side = r.Action
	}
	qty := float64(r.Qty)
	if qty == 0 {
		qty = float64(r.Size)
	}
	price := float64(r.Price)
	if price == 0 {
		price = float64(r.P)
	}
	fee := float64(r.Fee)
	if fee == 0 {
		fee = float64(r.F)
	}
	ts := r.Time.value()
	for _, candidate := range []flexTime{r.Ts, r.T, r.Timestamp} {
		if !ts.IsZero() {
			break
		}
		ts = candidate.value()
	}
	return market.Trade{
		ID:    string(r.ID),
		Side:  market.Side(strings.ToUpper(strings.TrimSpace(side))),
		Qty:   qty,
		Price: price,
		Fee:   fee,
		Ts:    ts,
	}
}

// tradesResponse accepts either a bare array or an {items: [...]} envelope.
type tradesResponse struct {
	rows []tradeRow
}

func (r *tradesResponse) UnmarshalJSON(data []byte) error {
	r.rows = nil
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &r.rows)
	}
	var envelope struct {
		Items []tradeRow `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	r.rows = envelope.Items
	return nil
}

type statusRow struct {
	Price      flexNumber `json:"price"`
	Position   string     `json:"position"`
	InPosition bool       `json:"in_position"`
}

type seriesRow struct {
	Time      flexTime   `json:"time"`
	Ts        flexTime   `json:"ts"`
	T         flexTime   `json:"t"`
	Price     flexNumber `json:"price"`
	Sentiment flexNumber `json:"sentiment"`
}

func (r seriesRow) timestamp() time.Time {
	for _, candidate := range []flexTime{r.Time, r.Ts, r.T} {
		if ts := candidate.value(); !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

// seriesResponse accepts a bare array or a {series: [...]} envelope.
type seriesResponse struct {
	rows []seriesRow
}

func (r *seriesResponse) UnmarshalJSON(data []byte) error {
	r.rows = nil
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &r.rows)
	}
	var envelope struct {
		Series []seriesRow `json:"series"`
		Items  []seriesRow `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	r.rows = envelope.Series
	if r.rows == nil {
		r.rows = envelope.Items
	}
	return nil
}
