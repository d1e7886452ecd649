package editorterm

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EditorConfig describes a text editor to run on a temporary file.
type EditorConfig struct {
	// Command is the editor argv. Nil means $EDITOR, falling back to vi.
	Command []string
	// Suffix is appended to the temporary file name so editors can pick a
	// syntax mode (e.g. ".md").
	Suffix string
	// Text is the initial file content.
	Text string
	// Rows and Cols are the terminal size. Zero means 24x80.
	Rows int
	Cols int
	// Term is the TERM value. Empty means "linux", which matches the
	// key encodings most console editors expect by default.
	Term string
	// Dir is the editor working directory. Empty means inherit.
	Dir string
	// Env is the base environment. Nil means inherit.
	Env []string
	// Scrollback is the maximum number of scrollback lines.
	Scrollback int
}

// Editor runs a terminal text editor subprocess on a temporary file and
// exposes the edited text. The editor renders into the session's emulated
// screen; the caller forwards input events and reads snapshots, then
// collects the final text after the editor exits.
type Editor struct {
	*Session

	path string

	mu        sync.Mutex
	finalText string
	collected bool
	removed   bool
}

// NewEditor writes the initial text to a temporary file and starts the
// editor on it. The caller must Close the editor to release the PTY and
// delete the temporary file.
func NewEditor(cfg EditorConfig) (*Editor, error) {
	command := cfg.Command
	if len(command) == 0 {
		if env := os.Getenv("EDITOR"); env != "" {
			command = strings.Fields(env)
		} else {
			command = []string{"vi"}
		}
	}

	file, err := os.CreateTemp("", "editorterm-*"+cfg.Suffix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := file.Name()

	if _, err := file.WriteString(cfg.Text); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	term := cfg.Term
	if term == "" {
		term = "linux"
	}

	session, err := NewSession(SessionConfig{
		Command:    append(append([]string{}, command...), path),
		Dir:        cfg.Dir,
		Env:        cfg.Env,
		Rows:       cfg.Rows,
		Cols:       cfg.Cols,
		Term:       term,
		Scrollback: cfg.Scrollback,
	})
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	return &Editor{Session: session, path: path}, nil
}

// Path returns the temporary file the editor is working on.
func (e *Editor) Path() string {
	return e.path
}

// Text returns the current file content. While the editor is running this
// reflects the last save; after it exits, the final text is retained even
// once the temporary file is deleted.
func (e *Editor) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.collected {
		return e.finalText, nil
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", e.path, err)
	}

	select {
	case <-e.Done():
		e.finalText = string(data)
		e.collected = true
	default:
	}

	return string(data), nil
}

// SetText replaces the file content. Only meaningful while the editor is
// running, and only for editors that reload on external change (or before
// the editor first reads the file).
func (e *Editor) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.collected {
		return fmt.Errorf("editor has exited")
	}
	return os.WriteFile(e.path, []byte(text), 0o600)
}

// Wait blocks until the editor exits, then returns the final file content
// and the exit code.
func (e *Editor) Wait() (string, int, error) {
	<-e.Done()
	text, err := e.Text()
	return text, e.ExitCode(), err
}

// Close terminates the editor session and deletes the temporary file. The
// final text remains available through Text if the editor had exited
// before Close. Idempotent.
func (e *Editor) Close() error {
	err := e.Session.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.collected {
		if data, readErr := os.ReadFile(e.path); readErr == nil {
			e.finalText = string(data)
			e.collected = true
		}
	}
	if !e.removed {
		os.Remove(e.path)
		e.removed = true
	}
	return err
}
