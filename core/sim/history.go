package sim

import "time"

// HistoryCapacity is five minutes of readings at one per second.
const HistoryCapacity = 300

// Reading is one (timestamp, net consumption) pair retained for
// window-based validation by the consumer.
type Reading struct {
	Time time.Time
	Net  float64
}

// History is a fixed-capacity ring of recent readings for one project.
// Oldest entries are evicted on overflow. Owned by a single worker.
type History struct {
	buf   []Reading
	head  int
	count int
}

// NewHistory creates an empty history with HistoryCapacity slots.
func NewHistory() *History {
	return &History{buf: make([]Reading, HistoryCapacity)}
}

// Push appends a reading, evicting the oldest when full.
func (h *History) Push(t time.Time, net float64) {
	h.buf[(h.head+h.count)%len(h.buf)] = Reading{Time: t, Net: net}
	if h.count < len(h.buf) {
		h.count++
	} else {
		h.head = (h.head + 1) % len(h.buf)
	}
}

// Len returns the number of retained readings.
func (h *History) Len() int { return h.count }

// Snapshot returns the retained readings oldest first.
func (h *History) Snapshot() []Reading {
	out := make([]Reading, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Average returns the mean net consumption over the retained window, or 0
// when empty.
func (h *History) Average() float64 {
	if h.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < h.count; i++ {
		sum += h.buf[(h.head+i)%len(h.buf)].Net
	}
	return sum / float64(h.count)
}
