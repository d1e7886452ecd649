package editorterm

import (
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

const (
	// readBufSize is the PTY read chunk size.
	readBufSize = 32 * 1024
	// writeQueueSize bounds the pending-input queue. When the subprocess
	// stops consuming input, the oldest queued writes are dropped rather
	// than blocking the caller.
	writeQueueSize = 256
)

// SessionConfig describes a terminal session to start.
type SessionConfig struct {
	// Command is the argv to run on the PTY. Must not be empty.
	Command []string
	// Dir is the subprocess working directory. Empty means inherit.
	Dir string
	// Env is the base environment. Nil means inherit.
	Env []string
	// Rows and Cols are the initial terminal size. Zero means 24x80.
	Rows int
	Cols int
	// Term is the TERM value. Empty means DefaultTerm.
	Term string
	// Scrollback is the maximum number of scrollback lines. Zero disables
	// scrollback.
	Scrollback int
	// Detail is the snapshot detail level published after each batch of
	// output. The zero value is SnapshotText.
	Detail SnapshotDetail
}

// Session runs one subprocess on a PTY and maintains an emulated screen
// of its output. A single background goroutine reads the PTY, feeds the
// parser, applies the resulting operations, and publishes an immutable
// snapshot after each batch; callers read snapshots and send input from
// any goroutine.
type Session struct {
	pty        *Pty
	parser     *Parser
	screen     *Screen
	translator *Translator

	// transMu guards the translator, whose mode flags are updated by the
	// read loop and read by Send callers.
	transMu sync.Mutex

	detail   SnapshotDetail
	snapshot atomic.Pointer[Snapshot]

	// updates is a coalescing signal: at most one pending notification.
	// pubMu orders publishes against the close of the channel so that a
	// late Resize cannot signal a finished session.
	pubMu         sync.Mutex
	updatesClosed bool
	updates       chan struct{}

	writeQueue chan []byte
	writeStop  chan struct{}

	done     chan struct{}
	exitCode atomic.Int32

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession spawns the configured command and starts the background read
// loop. The caller must Close the session to release the PTY.
func NewSession(cfg SessionConfig) (*Session, error) {
	p, err := SpawnPty(PtyConfig{
		Command: cfg.Command,
		Dir:     cfg.Dir,
		Env:     cfg.Env,
		Rows:    cfg.Rows,
		Cols:    cfg.Cols,
		Term:    cfg.Term,
	})
	if err != nil {
		return nil, err
	}

	rows := cfg.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	cols := cfg.Cols
	if cols <= 0 {
		cols = DefaultCols
	}

	s := &Session{
		pty:        p,
		parser:     NewParser(),
		translator: NewTranslator(p.Term()),
		detail:     cfg.Detail,
		updates:    make(chan struct{}, 1),
		writeQueue: make(chan []byte, writeQueueSize),
		writeStop:  make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.exitCode.Store(-1)

	scrollback := ScrollbackProvider(NoopScrollback{})
	if cfg.Scrollback > 0 {
		scrollback = NewMemoryScrollback(cfg.Scrollback)
	}
	s.screen = NewScreen(
		WithSize(rows, cols),
		WithScrollback(scrollback),
		WithResponse(responseWriter{s}),
	)

	s.snapshot.Store(s.screen.Snapshot(s.detail))

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()

	return s, nil
}

// responseWriter routes terminal responses (cursor position reports,
// device attributes) back to the subprocess through the write queue.
type responseWriter struct {
	s *Session
}

func (w responseWriter) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)
	w.s.enqueue(data)
	return len(p), nil
}

// readLoop is the sole writer to the screen. It runs until the PTY read
// fails, either because the subprocess exited or the session was closed.
func (s *Session) readLoop() {
	defer s.wg.Done()

	buf := make([]byte, readBufSize)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			ops := s.parser.Feed(buf[:n])
			s.screen.ApplyAll(ops)
			s.syncTranslatorModes()
			s.publish()
		}
		if err != nil {
			break
		}
	}

	code, _ := s.pty.Wait()
	s.exitCode.Store(int32(code))
	close(s.done)

	s.pubMu.Lock()
	s.updatesClosed = true
	close(s.updates)
	s.pubMu.Unlock()
}

// writeLoop flushes queued input to the PTY so that slow subprocess
// consumption never blocks the caller.
func (s *Session) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case data := <-s.writeQueue:
			if _, err := s.pty.Write(data); err != nil {
				return
			}
		case <-s.writeStop:
			// Drain what is already queued, then stop.
			for {
				select {
				case data := <-s.writeQueue:
					_, _ = s.pty.Write(data)
				default:
					return
				}
			}
		}
	}
}

// enqueue adds data to the write queue, dropping the oldest pending write
// when the queue is full.
func (s *Session) enqueue(data []byte) {
	for {
		select {
		case s.writeQueue <- data:
			return
		default:
		}
		select {
		case <-s.writeQueue:
		default:
		}
	}
}

func (s *Session) syncTranslatorModes() {
	s.transMu.Lock()
	defer s.transMu.Unlock()
	s.translator.SetAppCursorKeys(s.screen.HasMode(ModeCursorKeys))
	s.translator.SetBracketedPaste(s.screen.HasMode(ModeBracketedPaste))
	s.translator.SetMouseReporting(
		s.screen.HasMode(ModeReportMouseClicks),
		s.screen.HasMode(ModeReportCellMouseMotion),
		s.screen.HasMode(ModeReportAllMouseMotion),
		s.screen.HasMode(ModeSGRMouse),
	)
}

// publish stores a fresh snapshot and signals Updates without blocking.
func (s *Session) publish() {
	s.snapshot.Store(s.screen.Snapshot(s.detail))
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if s.updatesClosed {
		return
	}
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Snapshot returns the most recently published screen snapshot. The
// returned value is immutable and safe to use from any goroutine.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Updates returns a channel that receives a signal whenever a new
// snapshot is available. Signals are coalesced: a slow consumer sees at
// most one pending notification. The channel is closed when the session
// ends.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Done returns a channel closed when the subprocess has exited and its
// final output has been applied.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ExitCode returns the subprocess exit code. Valid only after Done is
// closed; returns -1 before then.
func (s *Session) ExitCode() int {
	return int(s.exitCode.Load())
}

// Screen exposes the live screen for direct queries. Most callers should
// prefer Snapshot.
func (s *Session) Screen() *Screen {
	return s.screen
}

// Pid returns the subprocess PID.
func (s *Session) Pid() int {
	return s.pty.Pid()
}

// Send translates a host UI event and queues the resulting bytes for the
// subprocess. Events with no terminal meaning are dropped.
func (s *Session) Send(ev tcell.Event) {
	s.transMu.Lock()
	data := s.translator.Translate(ev)
	s.transMu.Unlock()
	if len(data) > 0 {
		s.enqueue(data)
	}
}

// SendPaste queues pasted text, wrapped in bracketed-paste markers when
// the application enabled them.
func (s *Session) SendPaste(text string) {
	s.transMu.Lock()
	data := s.translator.TranslatePaste(text)
	s.transMu.Unlock()
	if len(data) > 0 {
		s.enqueue(data)
	}
}

// Write queues raw bytes for the subprocess, bypassing translation.
func (s *Session) Write(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.enqueue(buf)
}

// Resize updates both the PTY window size and the emulated screen.
func (s *Session) Resize(rows, cols int) error {
	if err := s.pty.Resize(rows, cols); err != nil {
		return err
	}
	s.screen.Resize(rows, cols)
	s.publish()
	return nil
}

// Close terminates the session: the PTY is closed (interrupting the
// blocked read), the subprocess is killed if still running, and both
// background goroutines are joined. Idempotent.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.writeStop)
		err = s.pty.Close()
		s.wg.Wait()
	})
	return err
}
