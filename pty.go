package editorterm

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// DefaultTerm is the TERM value advertised to the child process.
const DefaultTerm = "xterm-256color"

// SpawnError reports a failure to start a subprocess on a PTY.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// PtyConfig describes the subprocess to run and the terminal it sees.
type PtyConfig struct {
	// Command is the argv to run. Must not be empty.
	Command []string
	// Dir is the working directory. Empty means inherit.
	Dir string
	// Env is the base environment. Nil means inherit the parent's.
	// TERM, COLUMNS and LINES are always appended.
	Env []string
	// Rows and Cols are the initial terminal size. Zero means 24x80.
	Rows int
	Cols int
	// Term overrides the TERM value. Empty means DefaultTerm.
	Term string
}

// Pty owns a subprocess attached to a pseudo-terminal. Reads return the
// subprocess's terminal output; writes feed its input. Closing the Pty
// interrupts any blocked read and reaps the subprocess.
type Pty struct {
	cmd  *exec.Cmd
	file *os.File
	term string

	closeOnce sync.Once
	closeErr  error

	waitOnce sync.Once
	waitErr  error
	exitCode int
}

// SpawnPty starts the configured command attached to a new PTY.
func SpawnPty(cfg PtyConfig) (*Pty, error) {
	if len(cfg.Command) == 0 {
		return nil, &SpawnError{Command: "", Err: fmt.Errorf("empty command")}
	}

	rows := cfg.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	cols := cfg.Cols
	if cols <= 0 {
		cols = DefaultCols
	}
	term := cfg.Term
	if term == "" {
		term = DefaultTerm
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir

	env := cfg.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(env,
		fmt.Sprintf("TERM=%s", term),
		fmt.Sprintf("COLUMNS=%d", cols),
		fmt.Sprintf("LINES=%d", rows),
	)

	file, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, &SpawnError{Command: cfg.Command[0], Err: err}
	}

	return &Pty{cmd: cmd, file: file, term: term}, nil
}

// Read reads subprocess output. Blocks until data is available, the
// subprocess exits, or the Pty is closed.
func (p *Pty) Read(buf []byte) (int, error) {
	return p.file.Read(buf)
}

// Write sends input to the subprocess.
func (p *Pty) Write(data []byte) (int, error) {
	return p.file.Write(data)
}

// Resize updates the PTY window size and signals the subprocess
// (SIGWINCH).
func (p *Pty) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("invalid size %dx%d", rows, cols)
	}
	return pty.Setsize(p.file, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Term returns the TERM value the subprocess was started with.
func (p *Pty) Term() string {
	return p.term
}

// Pid returns the subprocess PID.
func (p *Pty) Pid() int {
	return p.cmd.Process.Pid
}

// Wait blocks until the subprocess exits and returns its exit code. Safe
// to call multiple times; later calls return the recorded result.
func (p *Pty) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			p.exitCode = 0
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.exitCode = exitErr.ExitCode()
			return
		}
		p.exitCode = -1
		p.waitErr = err
	})
	return p.exitCode, p.waitErr
}

// Close interrupts any blocked read by closing the PTY descriptor, kills
// the subprocess if it is still running, and reaps it. Idempotent.
func (p *Pty) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.file.Close()
		if p.cmd.ProcessState == nil && p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_, _ = p.Wait()
	})
	return p.closeErr
}
