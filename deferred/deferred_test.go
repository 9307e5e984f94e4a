package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
	fn    func()
}

func (c *countingClient) HandleDeferredCall() {
	c.calls++
	if c.fn != nil {
		c.fn()
	}
}

func TestSetCoalesces(t *testing.T) {
	d := NewDispatcher()
	client := &countingClient{}
	call := d.Register(client)

	call.Set()
	call.Set()
	call.Set()
	require.True(t, call.IsPending())

	serviced := d.Drain()
	assert.Equal(t, 1, serviced)
	assert.Equal(t, 1, client.calls, "repeated sets must coalesce into one notification")
	assert.False(t, call.IsPending())
}

func TestDrainRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	mkClient := func(name string) *countingClient {
		return &countingClient{fn: func() { order = append(order, name) }}
	}

	a := d.Register(mkClient("a"))
	b := d.Register(mkClient("b"))
	c := d.Register(mkClient("c"))

	// Set out of registration order; drain order must not follow set order.
	c.Set()
	a.Set()
	b.Set()

	serviced := d.Drain()
	require.Equal(t, 3, serviced)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestReArmWithinCallbackRunsNextPass(t *testing.T) {
	d := NewDispatcher()
	client := &countingClient{}
	call := d.Register(client)
	client.fn = func() {
		if client.calls == 1 {
			call.Set()
		}
	}

	call.Set()
	serviced := d.Drain()
	assert.Equal(t, 1, serviced)
	assert.Equal(t, 1, client.calls, "re-armed notification must not run in the same pass")
	require.True(t, call.IsPending())

	serviced = d.Drain()
	assert.Equal(t, 1, serviced)
	assert.Equal(t, 2, client.calls)
	assert.False(t, d.HasPending())
}

func TestDrainNothingPending(t *testing.T) {
	d := NewDispatcher()
	client := &countingClient{}
	d.Register(client)

	assert.Equal(t, 0, d.Drain())
	assert.Equal(t, 0, client.calls)
	assert.False(t, d.HasPending())
}

func TestRegisterNilClientPanics(t *testing.T) {
	d := NewDispatcher()
	assert.Panics(t, func() {
		d.Register(nil)
	})
}

func TestZeroValueCallPanics(t *testing.T) {
	var call Call
	assert.Panics(t, func() { call.Set() })
	assert.Panics(t, func() { call.IsPending() })
}

func TestSetSignalsWakeChannel(t *testing.T) {
	d := NewDispatcher()
	call := d.Register(&countingClient{})

	select {
	case <-d.Wake():
		t.Fatal("wake channel must be empty before any set")
	default:
	}

	call.Set()
	call.Set()

	select {
	case <-d.Wake():
	default:
		t.Fatal("set must signal the wake channel")
	}

	// A single buffered signal covers any number of coalesced sets.
	select {
	case <-d.Wake():
		t.Fatal("coalesced sets must not queue extra wake signals")
	default:
	}
}

func TestHasPendingAcrossClients(t *testing.T) {
	d := NewDispatcher()
	a := d.Register(&countingClient{})
	b := d.Register(&countingClient{})

	assert.False(t, d.HasPending())
	b.Set()
	assert.True(t, d.HasPending())
	assert.False(t, a.IsPending())
	assert.True(t, b.IsPending())

	d.Drain()
	assert.False(t, d.HasPending())
}
