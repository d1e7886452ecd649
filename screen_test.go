package editorterm

import (
	"bytes"
	"strings"
	"testing"
)

type testTerm struct {
	screen *Screen
	parser *Parser
}

func newTestTerm(opts ...ScreenOption) *testTerm {
	return &testTerm{
		screen: NewScreen(opts...),
		parser: NewParser(),
	}
}

func (tt *testTerm) write(data string) {
	tt.screen.ApplyAll(tt.parser.Feed([]byte(data)))
}

func TestScreenDefaults(t *testing.T) {
	s := NewScreen()

	if s.Rows() != 24 {
		t.Errorf("expected 24 rows, got %d", s.Rows())
	}
	if s.Cols() != 80 {
		t.Errorf("expected 80 cols, got %d", s.Cols())
	}
	if !s.CursorVisible() {
		t.Error("expected cursor visible by default")
	}
}

func TestScreenHelloNewline(t *testing.T) {
	tt := newTestTerm()

	tt.write("Hello\r\n")

	if got := tt.screen.LineContent(0); got != "Hello" {
		t.Errorf("expected 'Hello', got %q", got)
	}
	row, col := tt.screen.CursorPos()
	if row != 1 || col != 0 {
		t.Errorf("expected cursor at (1, 0), got (%d, %d)", row, col)
	}
}

func TestScreenGotoThenPrint(t *testing.T) {
	tt := newTestTerm()

	tt.write("\r\n\r\nmoved")
	tt.write("\x1b[1;1H")

	row, col := tt.screen.CursorPos()
	if row != 0 || col != 0 {
		t.Errorf("expected cursor at (0, 0), got (%d, %d)", row, col)
	}

	tt.write("X")
	if got := tt.screen.Cell(0, 0).Char; got != 'X' {
		t.Errorf("expected 'X' at (0, 0), got %q", got)
	}
}

func TestScreenAltScreenRestoresPrimary(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20))

	tt.write("keep me\r\nand me")
	before := tt.screen.String()

	tt.write("\x1b[?1049h")
	if !tt.screen.IsAlternateScreen() {
		t.Fatal("expected alternate screen active")
	}
	if got := tt.screen.LineContent(0); got != "" {
		t.Errorf("expected cleared alternate screen, got %q", got)
	}

	tt.write("full-screen app output\x1b[2J\x1b[1;1Hvim junk")
	tt.write("\x1b[?1049l")

	if tt.screen.IsAlternateScreen() {
		t.Fatal("expected primary screen active")
	}
	if got := tt.screen.String(); got != before {
		t.Errorf("primary screen changed across alt-screen round trip:\nbefore: %q\nafter:  %q", before, got)
	}
}

func TestScreenAltScreenRestoresCursor(t *testing.T) {
	tt := newTestTerm(WithSize(10, 40))

	tt.write("\x1b[3;7H")
	tt.write("\x1b[?1049h")
	tt.write("\x1b[9;1Hstatus line")
	tt.write("\x1b[?1049l")

	row, col := tt.screen.CursorPos()
	if row != 2 || col != 6 {
		t.Errorf("expected cursor restored to (2, 6), got (%d, %d)", row, col)
	}
}

func TestScreenResizeRoundTripPreservesCursor(t *testing.T) {
	tt := newTestTerm(WithSize(24, 80))

	tt.write("\x1b[10;30H")
	tt.screen.Resize(30, 100)
	tt.screen.Resize(24, 80)

	row, col := tt.screen.CursorPos()
	if row != 9 || col != 29 {
		t.Errorf("expected cursor at (9, 29) after resize round trip, got (%d, %d)", row, col)
	}
}

func TestScreenResizePreservesContent(t *testing.T) {
	tt := newTestTerm(WithSize(10, 40))

	tt.write("persistent")
	tt.screen.Resize(20, 60)

	if got := tt.screen.LineContent(0); got != "persistent" {
		t.Errorf("expected content preserved across grow, got %q", got)
	}
}

func TestScreenScrollRegion(t *testing.T) {
	tt := newTestTerm(WithSize(10, 40))

	tt.write("\x1b[10;1Hbottom")
	tt.write("\x1b[1;3r")

	top, bottom := tt.screen.ScrollRegion()
	if top != 0 || bottom != 2 {
		t.Fatalf("expected region (0, 2), got (%d, %d)", top, bottom)
	}

	tt.write("\x1b[1;1Ha\r\nb\r\nc")
	// Cursor is on the bottom margin; the next line feed scrolls only the
	// region.
	tt.write("\r\nd")

	if got := tt.screen.LineContent(0); got != "b" {
		t.Errorf("expected 'b' on row 0 after region scroll, got %q", got)
	}
	if got := tt.screen.LineContent(2); got != "d" {
		t.Errorf("expected 'd' on row 2, got %q", got)
	}
	if got := tt.screen.LineContent(9); !strings.Contains(got, "bottom") {
		t.Errorf("expected row outside region untouched, got %q", got)
	}
}

func TestScreenOriginMode(t *testing.T) {
	tt := newTestTerm(WithSize(10, 40))

	tt.write("\x1b[3;6r\x1b[?6h")
	tt.write("\x1b[1;1HX")

	if got := tt.screen.Cell(2, 0).Char; got != 'X' {
		t.Errorf("expected 'X' at region origin (2, 0), got %q", got)
	}
}

func TestScreenSGRAttributes(t *testing.T) {
	tt := newTestTerm()

	tt.write("\x1b[1;4;31mX\x1b[0mY")

	x := tt.screen.Cell(0, 0)
	if !x.HasFlag(CellFlagBold) || !x.HasFlag(CellFlagUnderline) {
		t.Errorf("expected bold underline on X, got flags %v", x.Flags)
	}
	fg, ok := x.Fg.(*IndexedColor)
	if !ok || fg.Index != 1 {
		t.Errorf("expected red foreground, got %v", x.Fg)
	}

	y := tt.screen.Cell(0, 1)
	if y.HasFlag(CellFlagBold) || y.HasFlag(CellFlagUnderline) {
		t.Errorf("expected attributes reset on Y, got flags %v", y.Flags)
	}
}

func TestScreenWideChar(t *testing.T) {
	tt := newTestTerm()

	tt.write("日")

	if c := tt.screen.Cell(0, 0); !c.IsWide() || c.Char != '日' {
		t.Errorf("expected wide 日 at (0, 0), got %q wide=%v", c.Char, c.IsWide())
	}
	if spacer := tt.screen.Cell(0, 1); !spacer.IsWideSpacer() {
		t.Error("expected spacer at (0, 1)")
	}
	if _, col := tt.screen.CursorPos(); col != 2 {
		t.Errorf("expected cursor at col 2, got %d", col)
	}
}

func TestScreenLineWrap(t *testing.T) {
	tt := newTestTerm(WithSize(5, 10))

	tt.write(strings.Repeat("a", 10) + "b")

	if got := tt.screen.LineContent(1); got != "b" {
		t.Errorf("expected 'b' wrapped to row 1, got %q", got)
	}
	if !tt.screen.primary.IsWrapped(0) {
		t.Error("expected row 0 marked wrapped")
	}
}

func TestScreenNoWrapMode(t *testing.T) {
	tt := newTestTerm(WithSize(5, 10))

	tt.write("\x1b[?7l" + strings.Repeat("a", 10) + "b")

	if got := tt.screen.LineContent(1); got != "" {
		t.Errorf("expected no wrap, got %q on row 1", got)
	}
	if got := tt.screen.Cell(0, 9).Char; got != 'b' {
		t.Errorf("expected 'b' overwriting last column, got %q", got)
	}
}

func TestScreenInsertDeleteLines(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20))

	tt.write("one\r\ntwo\r\nthree")
	tt.write("\x1b[2;1H\x1b[1L")

	if got := tt.screen.LineContent(1); got != "" {
		t.Errorf("expected blank inserted line, got %q", got)
	}
	if got := tt.screen.LineContent(2); got != "two" {
		t.Errorf("expected 'two' shifted down, got %q", got)
	}

	tt.write("\x1b[2;1H\x1b[1M")
	if got := tt.screen.LineContent(1); got != "two" {
		t.Errorf("expected 'two' back on row 1 after delete, got %q", got)
	}
}

func TestScreenEraseInLine(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20))

	tt.write("abcdef")
	tt.write("\x1b[1;4H\x1b[K")

	if got := tt.screen.LineContent(0); got != "abc" {
		t.Errorf("expected 'abc' after erase to end, got %q", got)
	}
}

func TestScreenAlignmentTest(t *testing.T) {
	tt := newTestTerm(WithSize(3, 4))

	tt.write("\x1b#8")

	for row := 0; row < 3; row++ {
		if got := tt.screen.LineContent(row); got != "EEEE" {
			t.Errorf("row %d: expected 'EEEE', got %q", row, got)
		}
	}
}

func TestScreenSaveRestoreCursorAttrs(t *testing.T) {
	tt := newTestTerm()

	tt.write("\x1b[5;5H\x1b[1m\x1b7")
	tt.write("\x1b[1;1H\x1b[0m")
	tt.write("\x1b8X")

	row, col := tt.screen.CursorPos()
	if row != 4 || col != 5 {
		t.Errorf("expected cursor restored to (4, 4)+print, got (%d, %d)", row, col)
	}
	if printed := tt.screen.Cell(4, 4); !printed.HasFlag(CellFlagBold) {
		t.Error("expected restored bold attribute on printed cell")
	}
}

func TestScreenDeviceStatusReport(t *testing.T) {
	var resp bytes.Buffer
	tt := newTestTerm(WithSize(24, 80), WithResponse(&resp))

	tt.write("\x1b[3;5H\x1b[6n")

	if got := resp.String(); got != "\x1b[3;5R" {
		t.Errorf("expected cursor position report, got %q", got)
	}
}

func TestScreenTitle(t *testing.T) {
	tt := newTestTerm()

	tt.write("\x1b]2;hello title\x07")

	if got := tt.screen.Title(); got != "hello title" {
		t.Errorf("expected title set, got %q", got)
	}
}

func TestScreenHideCursor(t *testing.T) {
	tt := newTestTerm()

	tt.write("\x1b[?25l")
	if tt.screen.CursorVisible() {
		t.Error("expected cursor hidden")
	}

	tt.write("\x1b[?25h")
	if !tt.screen.CursorVisible() {
		t.Error("expected cursor visible again")
	}
}

func TestScreenTabRepeatCountCapped(t *testing.T) {
	tt := newTestTerm()

	// A repeat count far beyond the column count must still terminate
	// promptly, landing on the last column.
	tt.write("\x1b[2000000000I")
	if _, col := tt.screen.CursorPos(); col != tt.screen.Cols()-1 {
		t.Errorf("expected cursor at last column, got %d", col)
	}

	tt.write("\x1b[2000000000Z")
	if _, col := tt.screen.CursorPos(); col != 0 {
		t.Errorf("expected cursor back at column 0, got %d", col)
	}
}

func TestScreenExplicitScrollStaysOutOfScrollback(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20), WithScrollback(NewMemoryScrollback(100)))

	tt.write("one\r\ntwo\r\nthree")
	tt.write("\x1b[2S")
	tt.write("\x1b[1;1H\x1b[M")

	if got := tt.screen.ScrollbackLen(); got != 0 {
		t.Errorf("expected no history from SU/DL, got %d lines", got)
	}
}

func TestScreenScrollbackAccumulates(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20), WithScrollback(NewMemoryScrollback(100)))

	for i := 0; i < 10; i++ {
		tt.write("line\r\n")
	}

	if got := tt.screen.ScrollbackLen(); got == 0 {
		t.Error("expected scrollback lines after overflow")
	}
}

func TestScreenAltScreenNoScrollbackPollution(t *testing.T) {
	tt := newTestTerm(WithSize(5, 20), WithScrollback(NewMemoryScrollback(100)))

	tt.write("\x1b[?1049h")
	for i := 0; i < 10; i++ {
		tt.write("junk\r\n")
	}
	tt.write("\x1b[?1049l")

	if got := tt.screen.ScrollbackLen(); got != 0 {
		t.Errorf("expected no scrollback from alternate screen, got %d lines", got)
	}
}

func TestScreenLineDrawingCharset(t *testing.T) {
	tt := newTestTerm()

	tt.write("\x1b(0q\x1b(Bq")

	if got := tt.screen.Cell(0, 0).Char; got != '─' {
		t.Errorf("expected line-drawing q to map to ─, got %q", got)
	}
	if got := tt.screen.Cell(0, 1).Char; got != 'q' {
		t.Errorf("expected plain q after charset reset, got %q", got)
	}
}

func TestScreenReset(t *testing.T) {
	tt := newTestTerm()

	tt.write("junk\x1b[5;5H\x1b[1;31m\x1b[?25l")
	tt.write("\x1bc")

	if got := tt.screen.LineContent(0); got != "" {
		t.Errorf("expected cleared screen after reset, got %q", got)
	}
	row, col := tt.screen.CursorPos()
	if row != 0 || col != 0 {
		t.Errorf("expected cursor home after reset, got (%d, %d)", row, col)
	}
	if !tt.screen.CursorVisible() {
		t.Error("expected cursor visible after reset")
	}
}

func TestScreenDirtyRows(t *testing.T) {
	tt := newTestTerm()
	tt.screen.ClearDirty()

	tt.write("\x1b[3;1Hx")

	rows := tt.screen.DirtyRows()
	if len(rows) != 1 || rows[0] != 2 {
		t.Errorf("expected dirty row [2], got %v", rows)
	}
}
