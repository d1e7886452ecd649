package editorterm

import (
	"strings"
	"testing"
	"time"
)

func snapshotText(snap *Snapshot) string {
	var sb strings.Builder
	for _, line := range snap.Lines {
		sb.WriteString(line.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// waitForOutput consumes update signals until the snapshot contains want
// or the timeout expires.
func waitForOutput(t *testing.T, s *Session, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if strings.Contains(snapshotText(s.Snapshot()), want) {
			return
		}
		select {
		case _, ok := <-s.Updates():
			if !ok {
				if strings.Contains(snapshotText(s.Snapshot()), want) {
					return
				}
				t.Fatalf("session ended without %q in output:\n%s", want, snapshotText(s.Snapshot()))
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q in output:\n%s", want, snapshotText(s.Snapshot()))
		}
	}
}

func TestSessionCapturesOutput(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/sh", "-c", "printf 'hello-session'"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	if got := s.ExitCode(); got != 0 {
		t.Errorf("expected exit code 0, got %d", got)
	}
	if text := snapshotText(s.Snapshot()); !strings.Contains(text, "hello-session") {
		t.Errorf("expected output in snapshot, got:\n%s", text)
	}
}

func TestSessionExitCode(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/sh", "-c", "exit 3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	if got := s.ExitCode(); got != 3 {
		t.Errorf("expected exit code 3, got %d", got)
	}
	// The exit code must stay stable on repeated reads.
	if got := s.ExitCode(); got != 3 {
		t.Errorf("expected exit code 3 on second read, got %d", got)
	}
}

func TestSessionSpawnError(t *testing.T) {
	_, err := NewSession(SessionConfig{
		Command: []string{"/no/such/binary/anywhere"},
	})
	if err == nil {
		t.Fatal("expected spawn error")
	}
	if _, ok := err.(*SpawnError); !ok {
		t.Errorf("expected *SpawnError, got %T", err)
	}
}

func TestSessionEmptyCommand(t *testing.T) {
	_, err := NewSession(SessionConfig{})
	if err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestSessionWriteReachesSubprocess(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/cat"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Write([]byte("ping"))

	// cat's PTY echoes the input back into the screen.
	waitForOutput(t, s, "ping", 5*time.Second)
}

func TestSessionCloseInterruptsRead(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/sleep", "30"},
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not interrupt the blocked read")
	}

	select {
	case <-s.Done():
	default:
		t.Error("expected Done closed after Close")
	}

	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}

func TestSessionResize(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/cat"},
		Rows:    24,
		Cols:    80,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Resize(30, 100); err != nil {
		t.Fatal(err)
	}

	if s.Screen().Rows() != 30 || s.Screen().Cols() != 100 {
		t.Errorf("expected 30x100 screen, got %dx%d", s.Screen().Rows(), s.Screen().Cols())
	}
	snap := s.Snapshot()
	if snap.Size.Rows != 30 || snap.Size.Cols != 100 {
		t.Errorf("expected resized snapshot, got %dx%d", snap.Size.Rows, snap.Size.Cols)
	}
}

func TestSessionTermEnv(t *testing.T) {
	s, err := NewSession(SessionConfig{
		Command: []string{"/bin/sh", "-c", "printf \"TERM=$TERM\""},
		Term:    "linux",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	if text := snapshotText(s.Snapshot()); !strings.Contains(text, "TERM=linux") {
		t.Errorf("expected TERM=linux in subprocess env, got:\n%s", text)
	}
}
