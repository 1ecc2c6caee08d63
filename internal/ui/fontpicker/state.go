// Package fontpicker provides a dropdown font picker component.
//
// A picker shows the active font family on a toggle button. Expanding it
// opens a scrollable list of fonts from a Catalog; choosing an entry makes
// it active and collapses the list. Any pointer activation outside the
// picker collapses it as well. While the list scrolls, preview downloads
// are requested for the visible rows plus a small look-ahead, throttled so
// that a burst of scroll events costs a single request.
//
// The package is split in two layers. Controller holds the state machines
// and talks to the Catalog; Model adapts it to Bubble Tea.
package fontpicker

// LoadingStatus tracks the catalog lifecycle as seen by the picker.
type LoadingStatus int

const (
	StatusLoading LoadingStatus = iota
	StatusFinished
	StatusError
)

func (s LoadingStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusFinished:
		return "finished"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadingEvent drives NextLoading.
type LoadingEvent int

const (
	EventInitSucceeded LoadingEvent = iota
	EventInitFailed
	EventSetActiveSucceeded
	EventSetActiveFailed
)

// NextLoading returns the status after ev. Transitions not listed below
// leave the status unchanged; nothing ever returns to StatusLoading.
//
//	loading  --init ok-->    finished
//	loading  --init fail-->  error
//	finished --set fail-->   error
//	error    --set ok-->     finished
func NextLoading(s LoadingStatus, ev LoadingEvent) LoadingStatus {
	switch s {
	case StatusLoading:
		switch ev {
		case EventInitSucceeded:
			return StatusFinished
		case EventInitFailed:
			return StatusError
		}
	case StatusFinished:
		if ev == EventSetActiveFailed {
			return StatusError
		}
	case StatusError:
		if ev == EventSetActiveSucceeded {
			return StatusFinished
		}
	}
	return s
}

// Expansion is whether the font list is open.
type Expansion int

const (
	Collapsed Expansion = iota
	Expanded
)

func (e Expansion) String() string {
	if e == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// ExpansionEvent drives NextExpansion.
type ExpansionEvent int

const (
	EventToggle ExpansionEvent = iota
	EventOutsideActivation
	EventSelection
)

// NextExpansion returns the expansion state after ev. Only a toggle opens
// the list; outside activations and selections always leave it closed.
func NextExpansion(e Expansion, ev ExpansionEvent) Expansion {
	switch ev {
	case EventToggle:
		if e == Expanded {
			return Collapsed
		}
		return Expanded
	case EventOutsideActivation, EventSelection:
		return Collapsed
	}
	return e
}
