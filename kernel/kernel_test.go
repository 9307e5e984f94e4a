package kernel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/charles37/tock/capabilities"
)

// One MainLoopCapability per test binary; presenting it does not consume it.
var loopToken = capabilities.MintMainLoop()

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClient struct {
	invoked chan struct{}
}

func (c *fakeClient) HandleDeferredCall() {
	c.invoked <- struct{}{}
}

type countingWatchdog struct {
	setups  int
	tickles int
}

func (w *countingWatchdog) Setup()   { w.setups++ }
func (w *countingWatchdog) Tickle()  { w.tickles++ }
func (w *countingWatchdog) Suspend() {}
func (w *countingWatchdog) Resume()  {}

func TestLoopServicesDeferredCalls(t *testing.T) {
	k := New(nil)
	client := &fakeClient{invoked: make(chan struct{}, 1)}
	call := k.Dispatcher().Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- k.Loop(ctx, TestResources(), loopToken)
	}()

	call.Set()
	select {
	case <-client.invoked:
	case <-time.After(5 * time.Second):
		t.Fatal("deferred call was never serviced")
	}

	// A second arm after the loop has gone idle must wake it again.
	call.Set()
	select {
	case <-client.invoked:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not wake for a second deferred call")
	}

	cancel()
	require.NoError(t, <-done)
	assert.False(t, k.Dispatcher().HasPending())
}

func TestLoopTicklesWatchdog(t *testing.T) {
	k := New(nil)
	wd := &countingWatchdog{}
	resources := TestResources()
	resources.Watchdog = wd

	client := &fakeClient{invoked: make(chan struct{}, 1)}
	call := k.Dispatcher().Register(client)
	call.Set()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- k.Loop(ctx, resources, loopToken)
	}()

	<-client.invoked
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, wd.setups)
	assert.GreaterOrEqual(t, wd.tickles, 1)
}

func TestLoopRequiresCapability(t *testing.T) {
	k := New(nil)
	assert.Panics(t, func() {
		_ = k.Loop(context.Background(), TestResources(), nil)
	})
}

func TestLoopRequiresResources(t *testing.T) {
	k := New(nil)
	err := k.Loop(context.Background(), nil, loopToken)
	require.Error(t, err)
}

func TestResourcesValidate(t *testing.T) {
	t.Run("full bundle", func(t *testing.T) {
		require.NoError(t, TestResources().Validate())
	})

	clear := []struct {
		name string
		mod  func(*Resources)
	}{
		{"scheduler", func(r *Resources) { r.Scheduler = nil }},
		{"syscall filter", func(r *Resources) { r.SyscallFilter = nil }},
		{"process fault handler", func(r *Resources) { r.ProcessFault = nil }},
		{"watchdog", func(r *Resources) { r.Watchdog = nil }},
		{"context switch callback", func(r *Resources) { r.ContextSwitchCallback = nil }},
		{"scheduler timer", func(r *Resources) { r.SchedulerTimer = nil }},
	}
	for _, tt := range clear {
		t.Run("missing "+tt.name, func(t *testing.T) {
			r := TestResources()
			tt.mod(r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestLoopRejectsNilSlot(t *testing.T) {
	k := New(nil)
	resources := TestResources()
	resources.Watchdog = nil

	err := k.Loop(context.Background(), resources, loopToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watchdog")
}

func TestNullObjectsAreInert(t *testing.T) {
	require.NoError(t, NullSyscallFilter{}.Filter(42))
	NullProcessFault{}.HandleFault(1)
	NullWatchdog{}.Setup()
	NullWatchdog{}.Tickle()
	NullContextSwitchCallback{}.ContextSwitchHook(1)
	NullSchedulerTimer{}.Start(10 * time.Millisecond)
	NullSchedulerTimer{}.Reset()
}
