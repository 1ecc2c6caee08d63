// Package pointer is the screen-wide pointer activation registry. Components
// that care about clicks anywhere on screen (a dropdown closing on an outside
// click) register a listener and must release it when done.
package pointer

import (
	"sync"

	"github.com/zjrosen/fontpick/internal/ui/uitree"
)

// Listener receives the node a pointer activation landed on.
type Listener func(target *uitree.Node)

// Dispatcher fans pointer activations out to registered listeners.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[uint64]Listener)}
}

// Registration is the handle returned by Register.
type Registration struct {
	d    *Dispatcher
	id   uint64
	once sync.Once
}

// Register adds fn and returns its registration.
func (d *Dispatcher) Register(fn Listener) *Registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.listeners[id] = fn
	d.order = append(d.order, id)
	return &Registration{d: d, id: id}
}

// Release removes the listener. Safe to call more than once and on nil.
func (r *Registration) Release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.d.remove(r.id)
	})
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Dispatch delivers target to every listener registered when Dispatch was
// called, in registration order. Listeners may release themselves (or
// register new listeners) during dispatch; a listener released by an earlier
// one in the same dispatch is skipped.
func (d *Dispatcher) Dispatch(target *uitree.Node) {
	d.mu.Lock()
	ids := make([]uint64, len(d.order))
	copy(ids, d.order)
	d.mu.Unlock()

	for _, id := range ids {
		d.mu.Lock()
		fn, ok := d.listeners[id]
		d.mu.Unlock()
		if ok {
			fn(target)
		}
	}
}

// Count returns the number of registered listeners.
func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
