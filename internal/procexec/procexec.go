// Package procexec runs external tools and maps their failures onto the
// error taxonomy.
package procexec

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
)

// killGrace is how long Wait keeps reading output after a cancelled
// process group has been signalled.
const killGrace = 5 * time.Second

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// OnStderrLine, when set, receives each stderr line as it arrives.
	// Both '\r' and '\n' terminate a line so that progress output is seen.
	OnStderrLine func(line string)
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t'\"") {
			parts = append(parts, "'"+strings.ReplaceAll(a, "'", `'\''`)+"'")
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Output holds what a finished process wrote.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes commands. Tool adapters take a Runner so their argument
// building can be tested without the binaries installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command, waits for it and returns its output. A non-zero
// exit becomes a CommandError carrying stderr; a cancelled context becomes
// a Cancelled error.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, mwerrors.NewCancelledError()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = killGrace
	isolate(cmd)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	var stderr bytes.Buffer
	var wg sync.WaitGroup
	if c.OnStderrLine == nil {
		cmd.Stderr = &stderr
	} else {
		pipe, err := cmd.StderrPipe()
		if err != nil {
			return Output{}, mwerrors.NewCommandStartError(c.Name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanLines(pipe, &stderr, c.OnStderrLine)
		}()
	}

	if err := cmd.Start(); err != nil {
		return Output{}, mwerrors.NewCommandStartError(c.Name, err)
	}
	wg.Wait()
	err := cmd.Wait()

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctx.Err() != nil {
			return out, mwerrors.NewCancelledError()
		}
		return out, mwerrors.WrapExecError(c.Name, err, out.Stderr)
	}
	return out, nil
}

// scanLines copies r into buf and calls onLine for each '\r' or '\n'
// terminated line.
func scanLines(r io.Reader, buf *bytes.Buffer, onLine func(string)) {
	reader := bufio.NewReader(r)
	var line strings.Builder
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if line.Len() > 0 {
				onLine(line.String())
			}
			return
		}
		buf.WriteByte(b)
		if b == '\r' || b == '\n' {
			if line.Len() > 0 {
				onLine(line.String())
			}
			line.Reset()
			continue
		}
		line.WriteByte(b)
	}
}
