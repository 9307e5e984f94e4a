// Package capabilities implements unforgeable proof-of-authorization tokens
// for privileged, one-time kernel operations.
//
// Each capability is an interface with an unexported method, so no code
// outside this package can construct a value satisfying it; the only way to
// obtain a token is through the Mint functions, and each kind can be minted
// exactly once per process lifetime. Mint calls belong in the board's boot
// sequence, never in a loop, callback, or interrupt handler. Presenting a
// token does not consume it.
package capabilities

import "sync/atomic"

// MainLoopCapability authorizes entering the kernel's main loop.
type MainLoopCapability interface {
	mainLoopCapability()
}

// DebugWriterCapability authorizes designating the process-wide debug
// output writer.
type DebugWriterCapability interface {
	debugWriterCapability()
}

type mainLoopToken struct{}

func (mainLoopToken) mainLoopCapability() {}

type debugWriterToken struct{}

func (debugWriterToken) debugWriterCapability() {}

var (
	mainLoopMinted    atomic.Bool
	debugWriterMinted atomic.Bool
)

// MintMainLoop mints the process's one MainLoopCapability. A second call is
// a boot-sequence bug and panics.
func MintMainLoop() MainLoopCapability {
	if !mainLoopMinted.CompareAndSwap(false, true) {
		panic("capabilities: MainLoopCapability already minted")
	}
	return mainLoopToken{}
}

// MintDebugWriter mints the process's one DebugWriterCapability. A second
// call is a boot-sequence bug and panics.
func MintDebugWriter() DebugWriterCapability {
	if !debugWriterMinted.CompareAndSwap(false, true) {
		panic("capabilities: DebugWriterCapability already minted")
	}
	return debugWriterToken{}
}
