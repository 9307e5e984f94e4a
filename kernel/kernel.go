// Package kernel implements the cooperative main loop and the resource
// bundle it runs over.
//
// The execution model is single-threaded: one goroutine runs the loop and
// performs all real work. Other goroutines play the role of interrupt
// context; the only thing they may do is mark deferred calls pending, which
// wakes the loop. Entering the loop requires the MainLoopCapability, so
// only the board's boot sequence can start it.
package kernel

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/charles37/tock/capabilities"
	"github.com/charles37/tock/deferred"
)

// Kernel owns the deferred-call dispatcher and drives it from the main loop.
type Kernel struct {
	log        log.Logger
	dispatcher *deferred.Dispatcher
}

// New creates a kernel with an empty dispatcher.
func New(logger log.Logger) *Kernel {
	if logger == nil {
		logger = log.New()
	}
	return &Kernel{
		log:        logger,
		dispatcher: deferred.NewDispatcher(),
	}
}

// Dispatcher exposes the kernel's deferred-call dispatcher so components
// can register themselves during board bring-up.
func (k *Kernel) Dispatcher() *deferred.Dispatcher {
	return k.dispatcher
}

// Loop runs the cooperative main loop until the context is canceled. Each
// iteration tickles the watchdog, drains every pending deferred call, then
// sleeps until new work arrives. Loop never returns while work remains
// pending.
//
// The capability is presented, not consumed; it exists so that no code path
// outside the boot sequence can enter the loop.
func (k *Kernel) Loop(ctx context.Context, resources *Resources, capability capabilities.MainLoopCapability) error {
	if capability == nil {
		panic("kernel: Loop called without a MainLoopCapability")
	}
	if resources == nil {
		return fmt.Errorf("kernel: resources bundle is required")
	}
	if err := resources.Validate(); err != nil {
		return err
	}

	k.log.Info("Entering kernel main loop", "scheduler", resources.Scheduler.Policy())
	resources.Watchdog.Setup()

	for {
		resources.Watchdog.Tickle()
		serviced := k.dispatcher.Drain()
		if serviced > 0 {
			k.log.Trace("Serviced deferred calls", "count", serviced)
			continue
		}

		select {
		case <-ctx.Done():
			k.log.Info("Kernel main loop exiting", "reason", context.Cause(ctx))
			return nil
		case <-k.dispatcher.Wake():
		}
	}
}

func errMissingSlot(name string) error {
	return fmt.Errorf("kernel: resources bundle is missing its %s; fill intentionally absent subsystems with the null object", name)
}
