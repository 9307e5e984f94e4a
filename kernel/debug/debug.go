// Package debug provides the kernel's line-oriented debug output surface.
//
// Output goes to a single process-wide writer. Installing that writer is a
// privileged operation: it requires the DebugWriterCapability and happens at
// most once, during board bring-up. Until a board installs a writer, output
// falls back to stderr so early-boot diagnostics are never lost.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charles37/tock/capabilities"
)

var (
	mu        sync.Mutex
	writer    io.Writer = os.Stderr
	installed bool
)

// SetWriter designates the process-wide debug output writer. The capability
// requirement keeps runtime components from redirecting kernel output; the
// install-once rule makes at most one designation possible per process.
func SetWriter(w io.Writer, capability capabilities.DebugWriterCapability) {
	if capability == nil {
		panic("debug: SetWriter called without a DebugWriterCapability")
	}
	if w == nil {
		panic("debug: SetWriter called with nil writer")
	}
	mu.Lock()
	defer mu.Unlock()
	if installed {
		panic("debug: writer already installed")
	}
	writer = w
	installed = true
}

// Print writes one formatted line to the debug writer. Output is
// append-only and line-oriented; a trailing newline is added.
func Print(format string, args ...any) {
	mu.Lock()
	w := writer
	mu.Unlock()
	fmt.Fprintf(w, format+"\n", args...)
}
