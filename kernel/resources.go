package kernel

import "time"

// Scheduler decides which process runs next. The kernel test configuration
// has no user processes, so the policy is never consulted beyond its name.
type Scheduler interface {
	Policy() string
}

// RoundRobinScheduler is the default scheduling policy.
type RoundRobinScheduler struct{}

func (RoundRobinScheduler) Policy() string { return "round-robin" }

// SyscallFilter screens system calls before dispatch.
type SyscallFilter interface {
	Filter(driver uint32) error
}

// ProcessFault handles faults raised by user processes.
type ProcessFault interface {
	HandleFault(processID int)
}

// Watchdog is tickled once per kernel loop iteration.
type Watchdog interface {
	Setup()
	Tickle()
	Suspend()
	Resume()
}

// ContextSwitchCallback runs on every switch into a user process.
type ContextSwitchCallback interface {
	ContextSwitchHook(processID int)
}

// SchedulerTimer bounds a process's timeslice.
type SchedulerTimer interface {
	Start(timeslice time.Duration)
	Reset()
}

// Null objects for the resource slots a board intentionally leaves absent.
// Filling a slot with one of these signals "this subsystem is deliberately
// not present," which is distinct from a missing (nil) slot.
type (
	NullSyscallFilter         struct{}
	NullProcessFault          struct{}
	NullWatchdog              struct{}
	NullContextSwitchCallback struct{}
	NullSchedulerTimer        struct{}
)

func (NullSyscallFilter) Filter(uint32) error { return nil }

func (NullProcessFault) HandleFault(int) {}

func (NullWatchdog) Setup()   {}
func (NullWatchdog) Tickle()  {}
func (NullWatchdog) Suspend() {}
func (NullWatchdog) Resume()  {}

func (NullContextSwitchCallback) ContextSwitchHook(int) {}

func (NullSchedulerTimer) Start(time.Duration) {}
func (NullSchedulerTimer) Reset()              {}

// Resources is the board's singleton composition of the kernel-loop
// dependencies. Constructed once at boot and referenced by the main loop
// for its entire lifetime.
type Resources struct {
	Scheduler             Scheduler
	SyscallFilter         SyscallFilter
	ProcessFault          ProcessFault
	Watchdog              Watchdog
	ContextSwitchCallback ContextSwitchCallback
	SchedulerTimer        SchedulerTimer
}

// TestResources composes the bundle used by the kernel test configuration:
// a round-robin scheduler with every other slot filled by a null object.
func TestResources() *Resources {
	return &Resources{
		Scheduler:             RoundRobinScheduler{},
		SyscallFilter:         NullSyscallFilter{},
		ProcessFault:          NullProcessFault{},
		Watchdog:              NullWatchdog{},
		ContextSwitchCallback: NullContextSwitchCallback{},
		SchedulerTimer:        NullSchedulerTimer{},
	}
}

// Validate checks that every resource slot is filled. Absent subsystems
// must be filled with their null object, not left nil.
func (r *Resources) Validate() error {
	switch {
	case r.Scheduler == nil:
		return errMissingSlot("scheduler")
	case r.SyscallFilter == nil:
		return errMissingSlot("syscall filter")
	case r.ProcessFault == nil:
		return errMissingSlot("process fault handler")
	case r.Watchdog == nil:
		return errMissingSlot("watchdog")
	case r.ContextSwitchCallback == nil:
		return errMissingSlot("context switch callback")
	case r.SchedulerTimer == nil:
		return errMissingSlot("scheduler timer")
	}
	return nil
}
