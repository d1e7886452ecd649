package editorterm

import (
	"image/color"
	"unicode/utf8"
)

// parserState is the decoder's progress through a partially-consumed escape
// sequence.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateOSCString
)

const (
	maxParams = 32
	maxOSCLen = 4096
)

// Parser is a byte-stream state machine that decodes terminal output into
// TerminalOp values. Malformed or unrecognized sequences are discarded and
// the machine returns to ground; decoding never fails.
//
// A Parser carries state across Feed calls, so escape sequences and UTF-8
// runes may straddle read boundaries. It is not safe for concurrent use;
// each session owns one parser on its read loop.
type Parser struct {
	state parserState

	params    []int
	hasDigits bool
	private   byte
	inters    []byte
	csiIgnore bool

	osc        []byte
	oscDiscard bool
	oscEsc     bool

	utf8Buf       []byte
	utf8Remaining int

	ops []TerminalOp
}

// NewParser creates a parser in ground state.
func NewParser() *Parser {
	return &Parser{
		params: make([]int, 0, maxParams),
	}
}

// Feed decodes a chunk of terminal output. It returns the ops recognized so
// far, in order. The returned slice is reused by the next Feed call; apply
// or copy it before feeding again.
func (p *Parser) Feed(data []byte) []TerminalOp {
	p.ops = p.ops[:0]
	for _, b := range data {
		p.next(b)
	}
	return p.ops
}

func (p *Parser) emit(op TerminalOp) {
	p.ops = append(p.ops, op)
}

func (p *Parser) next(b byte) {
	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateCSIEntry, stateCSIParam, stateCSIIntermediate:
		p.csi(b)
	case stateOSCString:
		p.oscString(b)
	}
}

// ground handles bytes outside any escape sequence: C0 controls execute
// immediately, everything else is printable text (possibly multi-byte
// UTF-8).
func (p *Parser) ground(b byte) {
	if p.utf8Remaining > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Remaining--
			if p.utf8Remaining == 0 {
				r, _ := utf8.DecodeRune(p.utf8Buf)
				p.utf8Buf = p.utf8Buf[:0]
				if r != utf8.RuneError {
					p.emit(OpPrint{Rune: r})
				}
			}
			return
		}
		// Truncated rune: drop the pending bytes and reprocess.
		p.utf8Buf = p.utf8Buf[:0]
		p.utf8Remaining = 0
	}

	switch {
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20 || b == 0x7F:
		// Recognized C0 controls execute; the rest and DEL are ignored.
		p.executeControl(b)
	case b < 0x80:
		p.emit(OpPrint{Rune: rune(b)})
	case b&0xE0 == 0xC0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 1
	case b&0xF0 == 0xE0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 2
	case b&0xF8 == 0xF0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 3
	default:
		// Stray continuation byte; drop it.
	}
}

// executeControl runs a C0 control. Terminals execute these immediately in
// any state, including mid-sequence, so the parser state is left alone; a
// control arriving inside a CSI sequence emits its op and the sequence
// continues.
func (p *Parser) executeControl(b byte) {
	switch b {
	case 0x07:
		p.emit(OpBell{})
	case 0x08:
		p.emit(OpBackspace{})
	case 0x09:
		p.emit(OpTab{N: 1})
	case 0x0A, 0x0B, 0x0C:
		p.emit(OpLineFeed{})
	case 0x0D:
		p.emit(OpCarriageReturn{})
	case 0x0E:
		p.emit(OpSelectCharset{Slot: 1})
	case 0x0F:
		p.emit(OpSelectCharset{Slot: 0})
	}
}

func (p *Parser) enterEscape() {
	p.state = stateEscape
	p.inters = p.inters[:0]
}

func (p *Parser) enterCSI() {
	p.state = stateCSIEntry
	p.params = p.params[:0]
	p.hasDigits = false
	p.private = 0
	p.inters = p.inters[:0]
	p.csiIgnore = false
}

func (p *Parser) enterOSC(discard bool) {
	p.state = stateOSCString
	p.osc = p.osc[:0]
	p.oscDiscard = discard
	p.oscEsc = false
}

func (p *Parser) escape(b byte) {
	switch {
	case b == 0x18 || b == 0x1A: // CAN, SUB
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		p.executeControl(b)
	case b >= 0x20 && b <= 0x2F:
		p.inters = append(p.inters, b)
	case b == '[':
		p.enterCSI()
	case b == ']':
		p.enterOSC(false)
	case b == 'P' || b == 'X' || b == '^' || b == '_':
		// DCS/SOS/PM/APC: consume the string body and drop it.
		p.enterOSC(true)
	default:
		p.state = stateGround
		p.escapeDispatch(b)
	}
}

// escapeDispatch handles the final byte of a non-CSI, non-OSC escape
// sequence. Unrecognized finals are silently dropped.
func (p *Parser) escapeDispatch(b byte) {
	if len(p.inters) > 0 {
		switch p.inters[0] {
		case '(', ')':
			slot := 0
			if p.inters[0] == ')' {
				slot = 1
			}
			cs := CharsetASCII
			if b == '0' {
				cs = CharsetLineDrawing
			}
			p.emit(OpConfigureCharset{Slot: slot, Charset: cs})
		case '#':
			if b == '8' {
				p.emit(OpAlignmentTest{})
			}
		}
		return
	}

	switch b {
	case '7':
		p.emit(OpSaveCursor{})
	case '8':
		p.emit(OpRestoreCursor{})
	case 'D':
		p.emit(OpLineFeed{})
	case 'E':
		p.emit(OpNextLine{})
	case 'H':
		p.emit(OpSetTabStop{})
	case 'M':
		p.emit(OpReverseIndex{})
	case 'c':
		p.emit(OpReset{})
	case '=', '>':
		// Keypad application/numeric mode; nothing to track for editors.
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	case b == 0x1B:
		p.enterEscape()
	case b < 0x20:
		p.executeControl(b)
	case b >= 0x40 && b <= 0x7E:
		p.state = stateGround
		if !p.csiIgnore {
			p.csiDispatch(b)
		}
	case b >= 0x20 && b <= 0x2F:
		if p.state == stateCSIEntry || p.state == stateCSIParam {
			p.state = stateCSIIntermediate
		}
		p.inters = append(p.inters, b)
	case p.state == stateCSIIntermediate:
		// Parameter byte after an intermediate: malformed. Consume the
		// rest of the sequence and dispatch nothing.
		p.csiIgnore = true
	case b >= '0' && b <= '9':
		p.state = stateCSIParam
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		if len(p.params) <= maxParams {
			i := len(p.params) - 1
			p.params[i] = p.params[i]*10 + int(b-'0')
		}
		p.hasDigits = true
	case b == ';' || b == ':':
		p.state = stateCSIParam
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		if len(p.params) < maxParams {
			p.params = append(p.params, 0)
		}
	case b >= 0x3C && b <= 0x3F:
		if p.state == stateCSIEntry {
			p.private = b
		} else {
			// Private marker after parameters: malformed.
			p.csiIgnore = true
		}
	default:
		p.csiIgnore = true
	}
}

// param returns the i-th parameter, or def when absent or zero.
func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

// rawParam returns the i-th parameter, or def when absent (zero is kept).
func (p *Parser) rawParam(i, def int) int {
	if i >= len(p.params) {
		return def
	}
	return p.params[i]
}

func (p *Parser) csiDispatch(final byte) {
	if len(p.inters) > 0 {
		if p.inters[0] == ' ' && final == 'q' {
			style := p.rawParam(0, 0)
			if style >= 0 && style <= 5 {
				// DECSCUSR 0 and 1 are both blinking block.
				if style > 0 {
					style--
				}
				p.emit(OpSetCursorStyle{Style: CursorStyle(style)})
			}
		}
		return
	}

	if p.private != 0 {
		p.csiPrivateDispatch(final)
		return
	}

	switch final {
	case 'A':
		p.emit(OpMoveUp{N: p.param(0, 1)})
	case 'B', 'e':
		p.emit(OpMoveDown{N: p.param(0, 1)})
	case 'C', 'a':
		p.emit(OpMoveForward{N: p.param(0, 1)})
	case 'D':
		p.emit(OpMoveBackward{N: p.param(0, 1)})
	case 'E':
		p.emit(OpMoveDownCR{N: p.param(0, 1)})
	case 'F':
		p.emit(OpMoveUpCR{N: p.param(0, 1)})
	case 'G', '`':
		p.emit(OpGotoCol{Col: p.param(0, 1) - 1})
	case 'H', 'f':
		p.emit(OpGoto{Row: p.param(0, 1) - 1, Col: p.param(1, 1) - 1})
	case 'I':
		p.emit(OpTab{N: p.param(0, 1)})
	case 'J':
		switch p.rawParam(0, 0) {
		case 0:
			p.emit(OpEraseScreen{Mode: ScreenClearBelow})
		case 1:
			p.emit(OpEraseScreen{Mode: ScreenClearAbove})
		case 2:
			p.emit(OpEraseScreen{Mode: ScreenClearAll})
		case 3:
			p.emit(OpEraseScreen{Mode: ScreenClearSaved})
		}
	case 'K':
		switch p.rawParam(0, 0) {
		case 0:
			p.emit(OpEraseLine{Mode: LineClearRight})
		case 1:
			p.emit(OpEraseLine{Mode: LineClearLeft})
		case 2:
			p.emit(OpEraseLine{Mode: LineClearAll})
		}
	case 'L':
		p.emit(OpInsertLines{N: p.param(0, 1)})
	case 'M':
		p.emit(OpDeleteLines{N: p.param(0, 1)})
	case 'P':
		p.emit(OpDeleteChars{N: p.param(0, 1)})
	case 'S':
		p.emit(OpScrollUp{N: p.param(0, 1)})
	case 'T':
		p.emit(OpScrollDown{N: p.param(0, 1)})
	case 'X':
		p.emit(OpEraseChars{N: p.param(0, 1)})
	case 'Z':
		p.emit(OpBackTab{N: p.param(0, 1)})
	case '@':
		p.emit(OpInsertBlanks{N: p.param(0, 1)})
	case 'd':
		p.emit(OpGotoRow{Row: p.param(0, 1) - 1})
	case 'g':
		switch p.rawParam(0, 0) {
		case 0:
			p.emit(OpClearTabs{Mode: TabClearCurrent})
		case 3:
			p.emit(OpClearTabs{Mode: TabClearAll})
		}
	case 'h':
		p.ansiMode(true)
	case 'l':
		p.ansiMode(false)
	case 'm':
		p.emit(OpSetAttrs{Attrs: p.sgrAttrs()})
	case 'n':
		n := p.rawParam(0, 0)
		if n == 5 || n == 6 {
			p.emit(OpDeviceStatus{N: n})
		}
	case 'c':
		p.emit(OpIdentify{})
	case 'r':
		p.emit(OpSetScrollRegion{Top: p.rawParam(0, 0), Bottom: p.rawParam(1, 0)})
	case 's':
		p.emit(OpSaveCursor{})
	case 'u':
		p.emit(OpRestoreCursor{})
	}
}

func (p *Parser) ansiMode(enable bool) {
	for _, num := range p.params {
		switch num {
		case 4:
			p.emit(OpSetMode{Mode: ModeInsert, Enable: enable})
		case 20:
			p.emit(OpSetMode{Mode: ModeLineFeedNewLine, Enable: enable})
		}
	}
}

func (p *Parser) csiPrivateDispatch(final byte) {
	if p.private != '?' {
		// '>' and '=' sequences (secondary DA, modifyOtherKeys) are not
		// part of the emulated subset.
		return
	}

	switch final {
	case 'h', 'l':
		enable := final == 'h'
		for i := 0; i < len(p.params); i++ {
			p.decMode(p.params[i], enable)
		}
	}
}

// decMode maps a DECSET/DECRST parameter to mode ops. Unknown modes are
// dropped.
func (p *Parser) decMode(num int, enable bool) {
	var mode TerminalMode
	switch num {
	case 1:
		mode = ModeCursorKeys
	case 6:
		mode = ModeOrigin
	case 7:
		mode = ModeLineWrap
	case 12:
		mode = ModeBlinkingCursor
	case 25:
		mode = ModeShowCursor
	case 47, 1047:
		mode = ModeAltScreen
	case 1000:
		mode = ModeReportMouseClicks
	case 1002:
		mode = ModeReportCellMouseMotion
	case 1003:
		mode = ModeReportAllMouseMotion
	case 1006:
		mode = ModeSGRMouse
	case 1048:
		if enable {
			p.emit(OpSaveCursor{})
		} else {
			p.emit(OpRestoreCursor{})
		}
		return
	case 1049:
		mode = ModeSwapScreenAndSetRestoreCursor
	case 2004:
		mode = ModeBracketedPaste
	default:
		return
	}
	p.emit(OpSetMode{Mode: mode, Enable: enable})
}

// sgrAttrs translates SGR parameters into attribute changes. An empty
// parameter list means reset.
func (p *Parser) sgrAttrs() []CharAttr {
	if !p.hasDigits && len(p.params) == 0 {
		return []CharAttr{{Kind: AttrReset}}
	}

	var attrs []CharAttr
	for i := 0; i < len(p.params); i++ {
		switch n := p.params[i]; n {
		case 0:
			attrs = append(attrs, CharAttr{Kind: AttrReset})
		case 1:
			attrs = append(attrs, CharAttr{Kind: AttrBold})
		case 2:
			attrs = append(attrs, CharAttr{Kind: AttrDim})
		case 3:
			attrs = append(attrs, CharAttr{Kind: AttrItalic})
		case 4:
			attrs = append(attrs, CharAttr{Kind: AttrUnderline})
		case 5, 6:
			attrs = append(attrs, CharAttr{Kind: AttrBlink})
		case 7:
			attrs = append(attrs, CharAttr{Kind: AttrReverse})
		case 8:
			attrs = append(attrs, CharAttr{Kind: AttrHidden})
		case 9:
			attrs = append(attrs, CharAttr{Kind: AttrStrike})
		case 22:
			attrs = append(attrs, CharAttr{Kind: AttrCancelBoldDim})
		case 23:
			attrs = append(attrs, CharAttr{Kind: AttrCancelItalic})
		case 24:
			attrs = append(attrs, CharAttr{Kind: AttrCancelUnderline})
		case 25:
			attrs = append(attrs, CharAttr{Kind: AttrCancelBlink})
		case 27:
			attrs = append(attrs, CharAttr{Kind: AttrCancelReverse})
		case 28:
			attrs = append(attrs, CharAttr{Kind: AttrCancelHidden})
		case 29:
			attrs = append(attrs, CharAttr{Kind: AttrCancelStrike})
		case 39:
			attrs = append(attrs, CharAttr{Kind: AttrForeground, Color: &NamedColor{Name: NamedColorForeground}})
		case 49:
			attrs = append(attrs, CharAttr{Kind: AttrBackground, Color: &NamedColor{Name: NamedColorBackground}})
		case 38, 48:
			kind := AttrForeground
			if n == 48 {
				kind = AttrBackground
			}
			c, consumed := p.extendedColor(i + 1)
			if c == nil {
				return attrs
			}
			attrs = append(attrs, CharAttr{Kind: kind, Color: c})
			i += consumed
		default:
			switch {
			case n >= 30 && n <= 37:
				attrs = append(attrs, CharAttr{Kind: AttrForeground, Color: &IndexedColor{Index: n - 30}})
			case n >= 40 && n <= 47:
				attrs = append(attrs, CharAttr{Kind: AttrBackground, Color: &IndexedColor{Index: n - 40}})
			case n >= 90 && n <= 97:
				attrs = append(attrs, CharAttr{Kind: AttrForeground, Color: &IndexedColor{Index: n - 90 + 8}})
			case n >= 100 && n <= 107:
				attrs = append(attrs, CharAttr{Kind: AttrBackground, Color: &IndexedColor{Index: n - 100 + 8}})
			}
		}
	}
	return attrs
}

// extendedColor parses the tail of an SGR 38/48 sequence starting at
// params[i]: 5;index or 2;r;g;b. Returns the color and the number of
// parameters consumed, or nil when malformed.
func (p *Parser) extendedColor(i int) (color.Color, int) {
	if i >= len(p.params) {
		return nil, 0
	}
	switch p.params[i] {
	case 5:
		if i+1 >= len(p.params) {
			return nil, 0
		}
		idx := p.params[i+1]
		if idx < 0 || idx > 255 {
			return nil, 0
		}
		return &IndexedColor{Index: idx}, 2
	case 2:
		if i+3 >= len(p.params) {
			return nil, 0
		}
		r, g, b := p.params[i+1], p.params[i+2], p.params[i+3]
		if r > 255 || g > 255 || b > 255 {
			return nil, 0
		}
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, 4
	}
	return nil, 0
}

func (p *Parser) oscString(b byte) {
	if p.oscEsc {
		p.oscEsc = false
		if b == '\\' { // ST
			p.oscDispatch()
			p.state = stateGround
			return
		}
		// ESC followed by anything else aborts the string.
		p.state = stateEscape
		p.escape(b)
		return
	}

	switch {
	case b == 0x07:
		p.oscDispatch()
		p.state = stateGround
	case b == 0x1B:
		p.oscEsc = true
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	default:
		if !p.oscDiscard && len(p.osc) < maxOSCLen {
			p.osc = append(p.osc, b)
		}
	}
}

// oscDispatch handles a complete OSC payload. Only window title sequences
// (OSC 0/1/2) are part of the emulated subset.
func (p *Parser) oscDispatch() {
	if p.oscDiscard || len(p.osc) < 2 {
		return
	}
	switch {
	case p.osc[0] == '0' && p.osc[1] == ';',
		p.osc[0] == '1' && p.osc[1] == ';',
		p.osc[0] == '2' && p.osc[1] == ';':
		p.emit(OpSetTitle{Title: string(p.osc[2:])})
	}
}
