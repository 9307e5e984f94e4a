// Package deferred implements the kernel's deferred-call primitive: a
// process-wide dispatch mechanism that lets a component ask to be invoked
// again from the main kernel loop instead of recursing or busy-waiting.
//
// Clients register once and receive a Call handle. Setting the handle marks
// exactly one notification pending for that client; repeated sets before the
// notification fires coalesce. The kernel loop drains pending notifications
// once per iteration, clearing each flag before invoking the callback so a
// client may re-arm itself from within its own callback without running
// twice in the same pass.
package deferred

import "sync"

// Client receives "do your pending work now" notifications from the
// dispatcher. HandleDeferredCall is always invoked from the kernel loop
// goroutine, never from the goroutine that called Set.
type Client interface {
	HandleDeferredCall()
}

// Dispatcher owns the ordered client list and the pending set. All mutation
// of the pending set happens under a single mutex, so Set is safe to call
// from any goroutine, including interrupt-style contexts.
type Dispatcher struct {
	mu      sync.Mutex
	clients []*Call
	wake    chan struct{}
}

// Call is the handle a registered client uses to request a notification.
// The zero value is unusable; handles are only obtained through Register.
type Call struct {
	dispatcher *Dispatcher
	client     Client
	pending    bool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		wake: make(chan struct{}, 1),
	}
}

// Register adds a client to the dispatcher and returns its call handle.
// Registration order fixes the drain order. A nil client is a programming
// error and panics immediately rather than failing at first Set.
func (d *Dispatcher) Register(client Client) *Call {
	if client == nil {
		panic("deferred: Register called with nil client")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	call := &Call{dispatcher: d, client: client}
	d.clients = append(d.clients, call)
	return call
}

// Set marks one notification pending for the client. Calling Set again
// before the notification is serviced has no additional effect: pending
// notifications coalesce, they do not accumulate.
func (c *Call) Set() {
	if c == nil || c.dispatcher == nil {
		panic("deferred: Set called on an unregistered client")
	}
	d := c.dispatcher
	d.mu.Lock()
	already := c.pending
	c.pending = true
	d.mu.Unlock()

	if !already {
		select {
		case d.wake <- struct{}{}:
		default:
		}
	}
}

// IsPending reports whether the client has an unserviced notification.
func (c *Call) IsPending() bool {
	if c == nil || c.dispatcher == nil {
		panic("deferred: IsPending called on an unregistered client")
	}
	c.dispatcher.mu.Lock()
	defer c.dispatcher.mu.Unlock()
	return c.pending
}

// Drain services every notification that was pending when the pass began,
// invoking each client's callback exactly once per pending flag, in
// registration order. Flags are cleared before any callback runs, so a
// callback that re-arms its own handle is serviced on the next pass, not
// this one. Returns the number of clients serviced.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	var due []*Call
	for _, call := range d.clients {
		if call.pending {
			call.pending = false
			due = append(due, call)
		}
	}
	d.mu.Unlock()

	for _, call := range due {
		call.client.HandleDeferredCall()
	}
	return len(due)
}

// HasPending reports whether any client has an unserviced notification.
func (d *Dispatcher) HasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, call := range d.clients {
		if call.pending {
			return true
		}
	}
	return false
}

// Wake returns the channel the kernel loop blocks on between iterations.
// A send is made whenever a notification transitions to pending.
func (d *Dispatcher) Wake() <-chan struct{} {
	return d.wake
}
