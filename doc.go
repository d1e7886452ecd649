// Package editorterm embeds terminal text editors (vim, nano, ...) in Go
// programs by running them on a pseudo-terminal and emulating the
// terminal they render into.
//
// The pipeline has four parts: a Pty owns the subprocess and its
// pseudo-terminal; a Parser decodes the output byte stream into terminal
// operations; a Screen applies those operations to a grid of styled
// cells; and a Translator turns host key and mouse events into the bytes
// the editor expects. A Session wires the four together with a single
// background read loop and publishes immutable snapshots for rendering:
//
//	session, err := editorterm.NewSession(editorterm.SessionConfig{
//		Command: []string{"nano", "notes.txt"},
//		Rows:    24,
//		Cols:    80,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	for range session.Updates() {
//		render(session.Snapshot())
//	}
//
// The Editor type layers the common edit-a-buffer workflow on top: it
// writes initial text to a temporary file, runs $EDITOR on it, and hands
// back the edited text when the editor exits.
//
// Parser and Screen also work standalone, without a subprocess, for
// testing against literal byte sequences:
//
//	screen := editorterm.NewScreen(editorterm.WithSize(24, 80))
//	screen.ApplyAll(editorterm.NewParser().Feed([]byte("\x1b[1;31mhello\x1b[0m")))
package editorterm
