package alert

type Limits struct {
	MaxDrawdown float64
}

func (l Limits) Breached(drawdown float64) bool {
	return l.MaxDrawdown > 0 && drawdown > l.MaxDrawdown
}
