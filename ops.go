package editorterm

import "image/color"

// TerminalOp is one decoded terminal operation. The parser produces ops and
// the screen consumes them in Apply; keeping the two sides decoupled lets
// the decoder be tested against literal byte sequences without a live
// subprocess.
type TerminalOp interface {
	terminalOp()
}

// LineClearMode selects which part of the current line an OpEraseLine
// affects (EL).
type LineClearMode int

const (
	// LineClearRight erases from the cursor to the end of the line.
	LineClearRight LineClearMode = iota
	// LineClearLeft erases from the start of the line through the cursor.
	LineClearLeft
	// LineClearAll erases the entire line.
	LineClearAll
)

// ScreenClearMode selects which part of the screen an OpEraseScreen affects
// (ED).
type ScreenClearMode int

const (
	// ScreenClearBelow erases from the cursor to the end of the screen.
	ScreenClearBelow ScreenClearMode = iota
	// ScreenClearAbove erases from the start of the screen through the cursor.
	ScreenClearAbove
	// ScreenClearAll erases the entire screen.
	ScreenClearAll
	// ScreenClearSaved erases the scrollback (xterm extension, ED 3).
	ScreenClearSaved
)

// TabClearMode selects which tab stops an OpClearTabs removes (TBC).
type TabClearMode int

const (
	// TabClearCurrent removes the tab stop at the cursor column.
	TabClearCurrent TabClearMode = iota
	// TabClearAll removes every tab stop.
	TabClearAll
)

// AttrKind identifies one SGR attribute change.
type AttrKind int

const (
	AttrReset AttrKind = iota
	AttrBold
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrike
	AttrCancelBoldDim
	AttrCancelItalic
	AttrCancelUnderline
	AttrCancelBlink
	AttrCancelReverse
	AttrCancelHidden
	AttrCancelStrike
	AttrForeground
	AttrBackground
)

// CharAttr is a single SGR attribute. Color is set only for AttrForeground
// and AttrBackground; a nil Color there means the default color.
type CharAttr struct {
	Kind  AttrKind
	Color color.Color
}

// OpPrint writes one grapheme at the cursor, advancing it (wrapping per the
// line wrap mode).
type OpPrint struct {
	Rune rune
}

// OpBell rings the terminal bell.
type OpBell struct{}

// OpBackspace moves the cursor one column left, stopping at column 0.
type OpBackspace struct{}

// OpCarriageReturn moves the cursor to column 0.
type OpCarriageReturn struct{}

// OpLineFeed moves the cursor down one row, scrolling at the bottom of the
// scroll region.
type OpLineFeed struct{}

// OpTab advances the cursor to the next N tab stops.
type OpTab struct {
	N int
}

// OpBackTab moves the cursor back to the previous N tab stops (CBT).
type OpBackTab struct {
	N int
}

// OpGoto moves the cursor to an absolute position (0-based; origin mode
// offsets the row by the scroll region top).
type OpGoto struct {
	Row int
	Col int
}

// OpGotoRow moves the cursor to an absolute row, keeping the column.
type OpGotoRow struct {
	Row int
}

// OpGotoCol moves the cursor to an absolute column, keeping the row.
type OpGotoCol struct {
	Col int
}

// OpMoveUp moves the cursor up N rows, clamped at the top.
type OpMoveUp struct {
	N int
}

// OpMoveDown moves the cursor down N rows, clamped at the bottom.
type OpMoveDown struct {
	N int
}

// OpMoveForward moves the cursor right N columns, clamped at the last
// column.
type OpMoveForward struct {
	N int
}

// OpMoveBackward moves the cursor left N columns, clamped at column 0.
type OpMoveBackward struct {
	N int
}

// OpMoveDownCR moves the cursor down N rows and to column 0 (CNL).
type OpMoveDownCR struct {
	N int
}

// OpMoveUpCR moves the cursor up N rows and to column 0 (CPL).
type OpMoveUpCR struct {
	N int
}

// OpEraseLine clears part of the current line without moving the cursor.
type OpEraseLine struct {
	Mode LineClearMode
}

// OpEraseScreen clears part of the screen without moving the cursor.
type OpEraseScreen struct {
	Mode ScreenClearMode
}

// OpEraseChars resets N characters at the cursor to default state without
// shifting (ECH).
type OpEraseChars struct {
	N int
}

// OpInsertBlanks inserts N blank cells at the cursor, shifting the rest of
// the line right (ICH).
type OpInsertBlanks struct {
	N int
}

// OpDeleteChars removes N characters at the cursor, shifting the rest of
// the line left (DCH).
type OpDeleteChars struct {
	N int
}

// OpInsertLines inserts N blank lines at the cursor within the scroll
// region (IL).
type OpInsertLines struct {
	N int
}

// OpDeleteLines removes N lines at the cursor within the scroll region (DL).
type OpDeleteLines struct {
	N int
}

// OpScrollUp shifts the scroll region up N lines (SU).
type OpScrollUp struct {
	N int
}

// OpScrollDown shifts the scroll region down N lines (SD).
type OpScrollDown struct {
	N int
}

// OpSetScrollRegion sets the scrolling margins (1-based inclusive, as
// received in DECSTBM; 0 means default).
type OpSetScrollRegion struct {
	Top    int
	Bottom int
}

// OpSetAttrs applies one or more SGR attribute changes to the current cell
// template.
type OpSetAttrs struct {
	Attrs []CharAttr
}

// OpSetMode enables or disables a terminal mode flag.
type OpSetMode struct {
	Mode   TerminalMode
	Enable bool
}

// OpSetCursorStyle changes the cursor rendering style (DECSCUSR).
type OpSetCursorStyle struct {
	Style CursorStyle
}

// OpSaveCursor saves the cursor position, attributes, and charset state
// (DECSC).
type OpSaveCursor struct{}

// OpRestoreCursor restores the state saved by OpSaveCursor (DECRC).
type OpRestoreCursor struct{}

// OpReverseIndex moves the cursor up one row, scrolling down at the top of
// the scroll region (RI).
type OpReverseIndex struct{}

// OpNextLine moves the cursor to column 0 of the next row, scrolling at the
// bottom (NEL).
type OpNextLine struct{}

// OpSetTitle sets the window title (OSC 0/2).
type OpSetTitle struct {
	Title string
}

// OpSetTabStop enables a tab stop at the cursor column (HTS).
type OpSetTabStop struct{}

// OpClearTabs removes tab stops (TBC).
type OpClearTabs struct {
	Mode TabClearMode
}

// OpConfigureCharset assigns a charset to slot G0 or G1.
type OpConfigureCharset struct {
	Slot    int
	Charset Charset
}

// OpSelectCharset makes slot G0 or G1 the active charset (SI/SO).
type OpSelectCharset struct {
	Slot int
}

// OpReset restores the terminal to its initial state (RIS).
type OpReset struct{}

// OpAlignmentTest fills the screen with 'E' characters (DECALN).
type OpAlignmentTest struct{}

// OpDeviceStatus requests a status report: 5 for operating status, 6 for
// cursor position. The screen answers through its response provider.
type OpDeviceStatus struct {
	N int
}

// OpIdentify requests primary device attributes (DA). The screen answers
// through its response provider.
type OpIdentify struct{}

func (OpPrint) terminalOp()            {}
func (OpBell) terminalOp()             {}
func (OpBackspace) terminalOp()        {}
func (OpCarriageReturn) terminalOp()   {}
func (OpLineFeed) terminalOp()         {}
func (OpTab) terminalOp()              {}
func (OpBackTab) terminalOp()          {}
func (OpGoto) terminalOp()             {}
func (OpGotoRow) terminalOp()          {}
func (OpGotoCol) terminalOp()          {}
func (OpMoveUp) terminalOp()           {}
func (OpMoveDown) terminalOp()         {}
func (OpMoveForward) terminalOp()      {}
func (OpMoveBackward) terminalOp()     {}
func (OpMoveDownCR) terminalOp()       {}
func (OpMoveUpCR) terminalOp()         {}
func (OpEraseLine) terminalOp()        {}
func (OpEraseScreen) terminalOp()      {}
func (OpEraseChars) terminalOp()       {}
func (OpInsertBlanks) terminalOp()     {}
func (OpDeleteChars) terminalOp()      {}
func (OpInsertLines) terminalOp()      {}
func (OpDeleteLines) terminalOp()      {}
func (OpScrollUp) terminalOp()         {}
func (OpScrollDown) terminalOp()       {}
func (OpSetScrollRegion) terminalOp()  {}
func (OpSetAttrs) terminalOp()         {}
func (OpSetMode) terminalOp()          {}
func (OpSetCursorStyle) terminalOp()   {}
func (OpSaveCursor) terminalOp()       {}
func (OpRestoreCursor) terminalOp()    {}
func (OpReverseIndex) terminalOp()     {}
func (OpNextLine) terminalOp()         {}
func (OpSetTitle) terminalOp()         {}
func (OpSetTabStop) terminalOp()       {}
func (OpClearTabs) terminalOp()        {}
func (OpConfigureCharset) terminalOp() {}
func (OpSelectCharset) terminalOp()    {}
func (OpReset) terminalOp()            {}
func (OpAlignmentTest) terminalOp()    {}
func (OpDeviceStatus) terminalOp()     {}
func (OpIdentify) terminalOp()         {}
