package editorterm

import (
	"reflect"
	"testing"
)

func feedOps(t *testing.T, data string) []TerminalOp {
	t.Helper()
	p := NewParser()
	ops := p.Feed([]byte(data))
	out := make([]TerminalOp, len(ops))
	copy(out, ops)
	return out
}

func TestParserPlainText(t *testing.T) {
	ops := feedOps(t, "Hi")

	want := []TerminalOp{OpPrint{Rune: 'H'}, OpPrint{Rune: 'i'}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserControlChars(t *testing.T) {
	ops := feedOps(t, "a\r\n\tb\x07")

	want := []TerminalOp{
		OpPrint{Rune: 'a'},
		OpCarriageReturn{},
		OpLineFeed{},
		OpTab{N: 1},
		OpPrint{Rune: 'b'},
		OpBell{},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserControlInsideCSI(t *testing.T) {
	// C0 controls execute immediately and the sequence keeps decoding.
	ops := feedOps(t, "\x1b[2\nB")

	want := []TerminalOp{OpLineFeed{}, OpMoveDown{N: 2}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserControlInsideEscape(t *testing.T) {
	ops := feedOps(t, "\x1b\r(0")

	want := []TerminalOp{
		OpCarriageReturn{},
		OpConfigureCharset{Slot: 0, Charset: CharsetLineDrawing},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserCursorMovement(t *testing.T) {
	ops := feedOps(t, "\x1b[5A\x1b[2B\x1b[C\x1b[10D")

	want := []TerminalOp{
		OpMoveUp{N: 5},
		OpMoveDown{N: 2},
		OpMoveForward{N: 1},
		OpMoveBackward{N: 10},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserGoto(t *testing.T) {
	ops := feedOps(t, "\x1b[1;1H")

	want := []TerminalOp{OpGoto{Row: 0, Col: 0}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}

	// Missing parameters default to 1.
	ops = feedOps(t, "\x1b[H")
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserEraseScreen(t *testing.T) {
	ops := feedOps(t, "\x1b[2J")

	want := []TerminalOp{OpEraseScreen{Mode: ScreenClearAll}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserEraseLineModes(t *testing.T) {
	ops := feedOps(t, "\x1b[K\x1b[1K\x1b[2K")

	want := []TerminalOp{
		OpEraseLine{Mode: LineClearRight},
		OpEraseLine{Mode: LineClearLeft},
		OpEraseLine{Mode: LineClearAll},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserSGRBasic(t *testing.T) {
	ops := feedOps(t, "\x1b[1;31m")

	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	attrs, ok := ops[0].(OpSetAttrs)
	if !ok {
		t.Fatalf("expected OpSetAttrs, got %T", ops[0])
	}
	if len(attrs.Attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(attrs.Attrs))
	}
	if attrs.Attrs[0].Kind != AttrBold {
		t.Errorf("expected bold, got %v", attrs.Attrs[0].Kind)
	}
	if attrs.Attrs[1].Kind != AttrForeground {
		t.Errorf("expected foreground, got %v", attrs.Attrs[1].Kind)
	}
	fg, ok := attrs.Attrs[1].Color.(*IndexedColor)
	if !ok || fg.Index != 1 {
		t.Errorf("expected indexed color 1, got %v", attrs.Attrs[1].Color)
	}
}

func TestParserSGREmptyIsReset(t *testing.T) {
	ops := feedOps(t, "\x1b[m")

	want := []TerminalOp{OpSetAttrs{Attrs: []CharAttr{{Kind: AttrReset}}}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserSGR256Color(t *testing.T) {
	ops := feedOps(t, "\x1b[38;5;208m")

	attrs := ops[0].(OpSetAttrs).Attrs
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attr, got %d", len(attrs))
	}
	c, ok := attrs[0].Color.(*IndexedColor)
	if !ok || c.Index != 208 {
		t.Errorf("expected indexed color 208, got %v", attrs[0].Color)
	}
}

func TestParserSGRTrueColor(t *testing.T) {
	ops := feedOps(t, "\x1b[48;2;10;20;30m")

	attrs := ops[0].(OpSetAttrs).Attrs
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attr, got %d", len(attrs))
	}
	if attrs[0].Kind != AttrBackground {
		t.Errorf("expected background, got %v", attrs[0].Kind)
	}
}

func TestParserDECModes(t *testing.T) {
	ops := feedOps(t, "\x1b[?25l\x1b[?1h\x1b[?2004h")

	want := []TerminalOp{
		OpSetMode{Mode: ModeShowCursor, Enable: false},
		OpSetMode{Mode: ModeCursorKeys, Enable: true},
		OpSetMode{Mode: ModeBracketedPaste, Enable: true},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserAltScreenMode(t *testing.T) {
	ops := feedOps(t, "\x1b[?1049h")

	want := []TerminalOp{OpSetMode{Mode: ModeSwapScreenAndSetRestoreCursor, Enable: true}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserUnknownDECModeDropped(t *testing.T) {
	ops := feedOps(t, "\x1b[?9999h")

	if len(ops) != 0 {
		t.Errorf("expected no ops for unknown mode, got %v", ops)
	}
}

func TestParserScrollRegion(t *testing.T) {
	ops := feedOps(t, "\x1b[5;20r")

	want := []TerminalOp{OpSetScrollRegion{Top: 5, Bottom: 20}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserOSCTitle(t *testing.T) {
	// BEL terminator.
	ops := feedOps(t, "\x1b]0;my title\x07")
	want := []TerminalOp{OpSetTitle{Title: "my title"}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}

	// ESC \ terminator.
	ops = feedOps(t, "\x1b]2;other\x1b\\")
	want = []TerminalOp{OpSetTitle{Title: "other"}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserMalformedRecovery(t *testing.T) {
	// A parameter byte after an intermediate is malformed; the parser must
	// drop the sequence and keep decoding.
	ops := feedOps(t, "\x1b[ 5mX")

	want := []TerminalOp{OpPrint{Rune: 'X'}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserCancelAbortsSequence(t *testing.T) {
	ops := feedOps(t, "\x1b[3\x18AY")

	want := []TerminalOp{OpPrint{Rune: 'A'}, OpPrint{Rune: 'Y'}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserSplitSequenceAcrossFeeds(t *testing.T) {
	p := NewParser()

	ops := p.Feed([]byte("\x1b[1;3"))
	if len(ops) != 0 {
		t.Fatalf("expected no ops mid-sequence, got %v", ops)
	}

	ops = p.Feed([]byte("1H"))
	want := OpGoto{Row: 0, Col: 30}
	if len(ops) != 1 || ops[0] != want {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserSplitUTF8AcrossFeeds(t *testing.T) {
	p := NewParser()

	data := []byte("日") // 3 bytes
	ops := p.Feed(data[:1])
	if len(ops) != 0 {
		t.Fatalf("expected no ops for partial rune, got %v", ops)
	}

	ops = p.Feed(data[1:])
	if len(ops) != 1 || ops[0] != (OpPrint{Rune: '日'}) {
		t.Errorf("expected print of 日, got %v", ops)
	}
}

func TestParserCharsetSequences(t *testing.T) {
	ops := feedOps(t, "\x1b(0\x1b(B")

	want := []TerminalOp{
		OpConfigureCharset{Slot: 0, Charset: CharsetLineDrawing},
		OpConfigureCharset{Slot: 0, Charset: CharsetASCII},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserSaveRestoreCursor(t *testing.T) {
	ops := feedOps(t, "\x1b7\x1b8")

	want := []TerminalOp{OpSaveCursor{}, OpRestoreCursor{}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserCursorStyle(t *testing.T) {
	ops := feedOps(t, "\x1b[4 q")

	want := []TerminalOp{OpSetCursorStyle{Style: CursorStyleSteadyUnderline}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserDeviceStatus(t *testing.T) {
	ops := feedOps(t, "\x1b[6n")

	want := []TerminalOp{OpDeviceStatus{N: 6}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParserDCSDiscarded(t *testing.T) {
	ops := feedOps(t, "\x1bPsome dcs payload\x1b\\X")

	want := []TerminalOp{OpPrint{Rune: 'X'}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}
