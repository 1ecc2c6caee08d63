package fontpicker

import (
	"math"
	"time"
)

const (
	// PreviewLookAhead is how many rows past the visible bottom get previews.
	PreviewLookAhead = 5
	// DefaultThrottle is the minimum spacing between forwarded preview requests.
	DefaultThrottle = 250 * time.Millisecond
)

// ScrollGeometry describes the list viewport at the time of a scroll.
// Heights are in rows; every item is assumed to have the same height.
type ScrollGeometry struct {
	ScrollTop    int
	ClientHeight int
	ScrollHeight int
	ItemCount    int
}

// DownloadIndex returns the exclusive upper bound of fonts that should have
// previews for g. ok is false when there is nothing to request.
func DownloadIndex(g ScrollGeometry) (upTo int, ok bool) {
	if g.ItemCount <= 0 || g.ScrollHeight <= 0 {
		return 0, false
	}
	elementHeight := float64(g.ScrollHeight) / float64(g.ItemCount)
	visibleBottom := int(math.Ceil(float64(g.ScrollTop+g.ClientHeight) / elementHeight))
	return visibleBottom + PreviewLookAhead, true
}

// Scheduler coalesces scroll events into trailing-edge preview requests.
//
// The first scroll of an idle window asks the caller to arm a timer for
// Interval. Later scrolls only replace the pending index. When the timer
// fires the caller calls Flush and forwards the result, so each window
// yields at most one request, carrying the most recent index.
type Scheduler struct {
	interval time.Duration
	pending  int
	dirty    bool
	armed    bool
}

// NewScheduler returns a scheduler. Non-positive intervals use DefaultThrottle.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultThrottle
	}
	return &Scheduler{interval: interval}
}

// Interval returns the throttle window.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// OnScroll records g. It returns true when the caller must arm a timer that
// later calls Flush.
func (s *Scheduler) OnScroll(g ScrollGeometry) bool {
	upTo, ok := DownloadIndex(g)
	if !ok {
		return false
	}
	s.pending = upTo
	s.dirty = true
	if s.armed {
		return false
	}
	s.armed = true
	return true
}

// Flush ends the current window and returns the pending index, if any.
func (s *Scheduler) Flush() (upTo int, ok bool) {
	s.armed = false
	if !s.dirty {
		return 0, false
	}
	s.dirty = false
	return s.pending, true
}

// Armed reports whether a window is open.
func (s *Scheduler) Armed() bool {
	return s.armed
}
