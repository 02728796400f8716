package strategies

// trendHistory keeps the latest cap trend values. Index 0 is the newest.
type trendHistory struct {
	values []float64
	head   int // slot the next value is written to
	size   int
}

func newTrendHistory(capacity int) *trendHistory {
	return &trendHistory{values: make([]float64, capacity)}
}

// Add appends v, evicting the oldest value once full.
func (h *trendHistory) Add(v float64) {
	h.values[h.head] = v
	h.head = (h.head + 1) % len(h.values)
	if h.size < len(h.values) {
		h.size++
	}
}

// Ready reports whether the history is full.
func (h *trendHistory) Ready() bool {
	return h.size == len(h.values)
}

// At returns the value i steps back from the newest. It panics when i is out of range.
func (h *trendHistory) At(i int) float64 {
	if i < 0 || i >= h.size {
		panic("trend history index out of range")
	}
	n := len(h.values)
	return h.values[(h.head-1-i+n)%n]
}

func (h *trendHistory) Len() int { return h.size }

func (h *trendHistory) Cap() int { return len(h.values) }
