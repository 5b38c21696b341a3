package numtest

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tcm/plasmon/mat"
)

// Invoker runs a native kernel on serialized operands and returns its serialized result.
type Invoker interface {
	Invoke(op Operation, kind mat.Kind, dims []int, input []byte) ([]byte, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(op Operation, kind mat.Kind, dims []int, input []byte) ([]byte, error)

func (f InvokerFunc) Invoke(op Operation, kind mat.Kind, dims []int, input []byte) ([]byte, error) {
	return f(op, kind, dims, input)
}

// ProcessError reports a native kernel that failed or printed something unreadable.
type ProcessError struct {
	Op       Operation
	Args     []string
	ExitCode int
	Stderr   string
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Op.Binary(), strings.Join(e.Args, " "), e.Err)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr: %s", s)
	}
	if e.Output != "" {
		fmt.Fprintf(&b, "\noutput: %s", truncate(e.Output, 256))
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Exec invokes the native executables found in Dir.
// Each call blocks until the process exits; there is no timeout.
type Exec struct {
	Dir string
	// Env is appended to the environment of the current process.
	Env []string
}

func (e *Exec) Invoke(op Operation, kind mat.Kind, dims []int, input []byte) ([]byte, error) {
	args := processArgs(kind, dims)
	cmd := exec.Command(filepath.Join(e.Dir, op.Binary()), args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		perr := &ProcessError{Op: op, Args: args, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return nil, errors.WithStack(perr)
	}
	return stdout.Bytes(), nil
}
