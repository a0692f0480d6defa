package kernel

import (
	"fmt"
	"os"
)

var (
	// haltFn is invoked after a panic has been reported. Tests substitute
	// it with a function that records the call instead of terminating the
	// process; see kernel/panic_test.go.
	haltFn = defaultHalt

	// reportFn receives the formatted panic message. The default writes to
	// stderr; cmd/nachos rewires it to the structured logger in
	// kernel/klog so kernel panics show up with the rest of the kernel's
	// log stream.
	reportFn = defaultReport

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// SetHaltFunc overrides the function invoked by Panic once the failure has
// been reported. cmd/nachos installs a no-op here and exits from main
// instead; tests use it to observe panics without killing the test binary.
func SetHaltFunc(fn func()) { haltFn = fn }

// SetReportFunc overrides how Panic reports a failure before halting.
func SetReportFunc(fn func(*Error)) { reportFn = fn }

func defaultHalt() {}

func defaultReport(e *Error) {
	fmt.Fprintf(os.Stderr, "kernel panic: [%s] %s\n", e.Module, e.Message)
}

// Panic reports the supplied error (or panic value), halts, and then
// unwinds the calling goroutine with a real Go panic carrying the *Error.
// The trailing panic exists so that Panic never returns to its caller even
// when haltFn does not stop the process (cmd/nachos installs a no-op, tests
// install a double that merely records the call) -- without it, code
// calling Panic for an unrecoverable condition would fall through into
// state it assumed was unreachable. cmd/nachos recovers the *Error in a
// deferred function in main and exits the process with status 1.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		err = &Error{Module: errRuntimePanic.Module, Message: t}
	case error:
		err = &Error{Module: errRuntimePanic.Module, Message: t.Error()}
	default:
		err = errRuntimePanic
	}

	reportFn(err)
	haltFn()
	panic(err)
}

// Assert panics with a module-tagged Error if cond is false. It is the
// workhorse behind every "this should never happen" check in the kernel.
func Assert(cond bool, module, format string, args ...interface{}) {
	if cond {
		return
	}
	Panic(&Error{Module: module, Message: fmt.Sprintf(format, args...)})
}
