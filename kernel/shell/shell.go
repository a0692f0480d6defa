// Package shell implements the line-at-a-time command dispatch a console
// shell performs: split the line into a program name and its arguments,
// notice a leading "&" asking the command to run detached, and either Join
// the spawned process or leave it running in the background.
package shell

import (
	"strings"

	"nachos/kernel"
	"nachos/kernel/kctx"
)

// Dispatch is one parsed shell input line.
type Dispatch struct {
	// CmdLine is the command line to Exec, with any background marker
	// already stripped off.
	CmdLine string

	// Background reports whether the line asked to run detached (a
	// leading "&"), in which case the shell must not wait for it to
	// finish before prompting again.
	Background bool
}

// Parse tokenizes one input line. A leading "&" marks the command to run in
// the background and is stripped before the rest of the line is handed to
// Exec, mirroring a shell that reads filename[0] == '&' off the front of
// its input buffer before calling Exec on the remainder.
func Parse(line string) Dispatch {
	line = strings.TrimRight(line, "\n")
	if strings.HasPrefix(line, "&") {
		return Dispatch{CmdLine: line[1:], Background: true}
	}
	return Dispatch{CmdLine: line, Background: false}
}

// Run parses line, spawns the program it names on ctx, and -- unless the
// command was backgrounded -- blocks until it exits, returning its exit
// status. An empty or whitespace-only line is a no-op. Run only handles
// process bookkeeping; whatever drives the spawned thread's actual syscalls
// (there is no instruction-set simulator to run real user code against) is
// the caller's responsibility.
func Run(ctx *kctx.Context, line string, priority int) (status int, err *kernel.Error) {
	d := Parse(line)
	argv := strings.Fields(d.CmdLine)
	if len(argv) == 0 {
		return 0, nil
	}

	th, pid, kerr := ctx.Spawn(argv[0], argv, priority)
	if kerr != nil {
		return -1, kerr
	}
	if d.Background {
		return 0, nil
	}

	th.Join()
	status = th.ExitStatus()
	ctx.Procs.RemoveProcess(pid)
	ctx.Args.Clear(pid)
	return status, nil
}
