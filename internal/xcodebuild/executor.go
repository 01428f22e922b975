package xcodebuild

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"
)

const (
	// waitDelay bounds how long Wait blocks on output pipes after the
	// child is killed or exits while a grandchild still holds them.
	waitDelay = 5 * time.Second
	// tailBytes is how much trailing output is kept for error reports.
	tailBytes = 32 << 10
)

// ExecResult holds the outcome of a single delegate invocation.
type ExecResult struct {
	Started  bool          // false when the process could not be launched
	ExitCode int           // -1 when there is no exit status
	Duration time.Duration // process start to exit
	Output   string        // tail of combined stdout/stderr
	Err      error
}

// Execute runs args as a child process and blocks until it exits. Output
// is streamed to out as it arrives, each line prefixed with prefix. When
// ctx ends the child is killed. With usePTY the child gets a pseudo
// terminal instead of pipes, so line-buffered progress shows up live.
func Execute(ctx context.Context, args []string, out io.Writer, prefix string, usePTY bool) ExecResult {
	if len(args) == 0 {
		return ExecResult{ExitCode: -1, Err: ErrEmptyDelegate}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay

	tail := newTailBuffer(tailBytes)
	sink := io.MultiWriter(newLineWriter(out, prefix), tail)

	var (
		start   time.Time
		waitErr error
	)
	if usePTY {
		start = time.Now()
		f, err := pty.Start(cmd)
		if err != nil {
			return ExecResult{ExitCode: -1, Duration: time.Since(start), Err: err}
		}
		copied := make(chan struct{})
		go func() {
			// Reading the master fails with EIO once the child side closes.
			_, _ = io.Copy(sink, f)
			close(copied)
		}()
		waitErr = cmd.Wait()
		select {
		case <-copied:
		case <-time.After(waitDelay):
		}
		f.Close()
	} else {
		cmd.Stdout = sink
		cmd.Stderr = sink
		start = time.Now()
		if err := cmd.Start(); err != nil {
			return ExecResult{ExitCode: -1, Duration: time.Since(start), Err: err}
		}
		waitErr = cmd.Wait()
	}

	res := ExecResult{
		Started:  true,
		ExitCode: 0,
		Duration: time.Since(start),
		Output:   tail.String(),
		Err:      waitErr,
	}
	if waitErr != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	return res
}
