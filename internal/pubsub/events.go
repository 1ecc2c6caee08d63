// Package pubsub carries log entries and font catalog notices from
// background goroutines into the Bubble Tea update loop.
package pubsub

import "time"

// Kind names what happened.
type Kind string

const (
	Logged       Kind = "logged"
	FontChanged  Kind = "font_changed"
	PreviewsDone Kind = "previews_done"

	ConfigChanged Kind = "config_changed"
	WatchFailed   Kind = "watch_failed"
)

// Event is one published payload. Seq increases by one per Publish on the
// same broker, so a receiver that sees a jump knows it was too slow.
type Event[T any] struct {
	Kind    Kind
	Seq     uint64
	At      time.Time
	Payload T
}
