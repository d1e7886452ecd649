package editorterm

import (
	"fmt"
	"strings"
	"sync"
)

// Default terminal dimensions
const (
	DefaultRows = 24
	DefaultCols = 80
)

// TerminalMode represents terminal modes as bit flags.
type TerminalMode uint32

const (
	// ModeNone is the empty mode set.
	ModeNone TerminalMode = 0
	// ModeCursorKeys makes cursor keys send application sequences (DECCKM).
	ModeCursorKeys TerminalMode = 1 << 0
	// ModeInsert shifts existing cells right on print instead of
	// overwriting (IRM).
	ModeInsert TerminalMode = 1 << 1
	// ModeOrigin makes cursor addressing relative to the scroll region
	// (DECOM).
	ModeOrigin TerminalMode = 1 << 2
	// ModeLineWrap wraps the cursor to the next line at the right margin
	// (DECAWM).
	ModeLineWrap TerminalMode = 1 << 3
	// ModeBlinkingCursor enables cursor blink.
	ModeBlinkingCursor TerminalMode = 1 << 4
	// ModeLineFeedNewLine makes LF also perform a carriage return (LNM).
	ModeLineFeedNewLine TerminalMode = 1 << 5
	// ModeShowCursor makes the cursor visible (DECTCEM).
	ModeShowCursor TerminalMode = 1 << 6
	// ModeReportMouseClicks reports mouse press and release (mode 1000).
	ModeReportMouseClicks TerminalMode = 1 << 7
	// ModeReportCellMouseMotion reports motion while a button is held
	// (mode 1002).
	ModeReportCellMouseMotion TerminalMode = 1 << 8
	// ModeReportAllMouseMotion reports all mouse motion (mode 1003).
	ModeReportAllMouseMotion TerminalMode = 1 << 9
	// ModeSGRMouse selects the SGR extended mouse encoding (mode 1006).
	ModeSGRMouse TerminalMode = 1 << 10
	// ModeAltScreen switches to the alternate buffer (modes 47 and 1047).
	ModeAltScreen TerminalMode = 1 << 11
	// ModeSwapScreenAndSetRestoreCursor saves the cursor, switches to a
	// cleared alternate buffer, and restores on exit (mode 1049).
	ModeSwapScreenAndSetRestoreCursor TerminalMode = 1 << 12
	// ModeBracketedPaste wraps pasted text in paste markers (mode 2004).
	ModeBracketedPaste TerminalMode = 1 << 13
)

// defaultModes are the modes active after a reset.
const defaultModes = ModeShowCursor | ModeLineWrap

// lineDrawingChars maps ASCII to DEC Special Graphics characters, used
// when the active charset is CharsetLineDrawing.
var lineDrawingChars = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌', 'd': '␍', 'e': '␊',
	'f': '°', 'g': '±', 'h': '␤', 'i': '␋', 'j': '┘', 'k': '┐',
	'l': '┌', 'm': '└', 'n': '┼', 'o': '⎺', 'p': '⎻', 'q': '─',
	'r': '⎼', 's': '⎽', 't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π', '|': '≠', '}': '£',
	'~': '·',
}

// Screen is the terminal's visible state: a cell grid, a cursor, scroll
// margins, modes, and an alternate buffer. It is mutated exclusively
// through Apply and read through the accessor methods or Snapshot.
//
// Screen is safe for concurrent use, but the intended pattern is a single
// writer calling Apply and any number of readers taking snapshots.
type Screen struct {
	mu sync.RWMutex

	rows int
	cols int

	primary   *Buffer
	alternate *Buffer
	altActive bool

	cursor        *Cursor
	savedPrimary  SavedCursor
	savedAlt      SavedCursor
	template      CellTemplate
	charsets      [2]Charset
	activeCharset int

	// scroll region, 0-based inclusive
	scrollTop    int
	scrollBottom int

	modes TerminalMode
	title string

	bell     BellProvider
	titleCb  TitleProvider
	response ResponseProvider
}

// ScreenOption configures a Screen.
type ScreenOption func(*screenConfig)

type screenConfig struct {
	rows       int
	cols       int
	scrollback ScrollbackProvider
	bell       BellProvider
	title      TitleProvider
	response   ResponseProvider
}

// WithSize sets the initial terminal dimensions.
func WithSize(rows, cols int) ScreenOption {
	return func(c *screenConfig) {
		c.rows = rows
		c.cols = cols
	}
}

// WithScrollback sets the scrollback storage for the primary buffer. The
// alternate buffer never has scrollback.
func WithScrollback(provider ScrollbackProvider) ScreenOption {
	return func(c *screenConfig) {
		c.scrollback = provider
	}
}

// WithBell sets the bell handler.
func WithBell(provider BellProvider) ScreenOption {
	return func(c *screenConfig) {
		c.bell = provider
	}
}

// WithTitle sets the title change handler.
func WithTitle(provider TitleProvider) ScreenOption {
	return func(c *screenConfig) {
		c.title = provider
	}
}

// WithResponse sets the writer that receives terminal responses (cursor
// position reports, device attributes). Typically the PTY input.
func WithResponse(w ResponseProvider) ScreenOption {
	return func(c *screenConfig) {
		c.response = w
	}
}

// NewScreen creates a terminal screen with the given options.
func NewScreen(opts ...ScreenOption) *Screen {
	cfg := &screenConfig{
		rows:       DefaultRows,
		cols:       DefaultCols,
		scrollback: NewMemoryScrollback(10000),
		bell:       NoopBell{},
		title:      NoopTitle{},
		response:   NoopResponse{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rows <= 0 {
		cfg.rows = DefaultRows
	}
	if cfg.cols <= 0 {
		cfg.cols = DefaultCols
	}

	s := &Screen{
		rows:         cfg.rows,
		cols:         cfg.cols,
		primary:      NewBufferWithStorage(cfg.rows, cfg.cols, cfg.scrollback),
		alternate:    NewBuffer(cfg.rows, cfg.cols),
		cursor:       NewCursor(),
		template:     NewCellTemplate(),
		charsets:     [2]Charset{CharsetASCII, CharsetASCII},
		scrollTop:    0,
		scrollBottom: cfg.rows - 1,
		modes:        defaultModes,
		bell:         cfg.bell,
		titleCb:      cfg.title,
		response:     cfg.response,
	}
	s.savedPrimary = s.saveState()
	s.savedAlt = s.saveState()
	return s
}

// buffer returns the currently active buffer. Callers must hold the lock.
func (s *Screen) buffer() *Buffer {
	if s.altActive {
		return s.alternate
	}
	return s.primary
}

// Apply executes a single terminal operation against the screen. It never
// fails; out-of-range coordinates are clamped.
func (s *Screen) Apply(op TerminalOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(op)
}

// ApplyAll executes a batch of operations under a single lock acquisition.
func (s *Screen) ApplyAll(ops []TerminalOp) {
	if len(ops) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		s.apply(op)
	}
}

func (s *Screen) apply(op TerminalOp) {
	switch o := op.(type) {
	case OpPrint:
		s.print(o.Rune)
	case OpBell:
		s.bell.Ring()
	case OpBackspace:
		if s.cursor.Col > 0 {
			s.cursor.Col--
		}
	case OpCarriageReturn:
		s.cursor.Col = 0
	case OpLineFeed:
		s.lineFeed()
		if s.modes&ModeLineFeedNewLine != 0 {
			s.cursor.Col = 0
		}
	case OpTab:
		// More tab stops than columns cannot exist; capping the repeat
		// count keeps hostile parameters from stalling Apply.
		for i, n := 0, clamp(o.N, 0, s.cols); i < n; i++ {
			s.cursor.Col = s.buffer().NextTabStop(s.cursor.Col)
		}
	case OpBackTab:
		for i, n := 0, clamp(o.N, 0, s.cols); i < n; i++ {
			s.cursor.Col = s.buffer().PrevTabStop(s.cursor.Col)
		}
	case OpGoto:
		s.goTo(o.Row, o.Col)
	case OpGotoRow:
		s.goTo(o.Row, s.cursor.Col)
	case OpGotoCol:
		s.cursor.Col = clamp(o.Col, 0, s.cols-1)
	case OpMoveUp:
		s.cursor.Row = clamp(s.cursor.Row-o.N, s.regionTopFor(s.cursor.Row), s.rows-1)
	case OpMoveDown:
		s.cursor.Row = clamp(s.cursor.Row+o.N, 0, s.regionBottomFor(s.cursor.Row))
	case OpMoveForward:
		s.cursor.Col = clamp(s.cursor.Col+o.N, 0, s.cols-1)
	case OpMoveBackward:
		s.cursor.Col = clamp(s.cursor.Col-o.N, 0, s.cols-1)
	case OpMoveDownCR:
		s.cursor.Row = clamp(s.cursor.Row+o.N, 0, s.regionBottomFor(s.cursor.Row))
		s.cursor.Col = 0
	case OpMoveUpCR:
		s.cursor.Row = clamp(s.cursor.Row-o.N, s.regionTopFor(s.cursor.Row), s.rows-1)
		s.cursor.Col = 0
	case OpEraseLine:
		s.eraseLine(o.Mode)
	case OpEraseScreen:
		s.eraseScreen(o.Mode)
	case OpEraseChars:
		s.eraseChars(o.N)
	case OpInsertBlanks:
		s.buffer().InsertBlanks(s.cursor.Row, s.cursor.Col, o.N)
	case OpDeleteChars:
		s.buffer().DeleteChars(s.cursor.Row, s.cursor.Col, o.N)
	case OpInsertLines:
		if s.inScrollRegion() {
			s.buffer().InsertLines(s.cursor.Row, o.N, s.scrollBottom+1)
			s.cursor.Col = 0
		}
	case OpDeleteLines:
		if s.inScrollRegion() {
			s.buffer().DeleteLines(s.cursor.Row, o.N, s.scrollBottom+1)
			s.cursor.Col = 0
		}
	case OpScrollUp:
		s.buffer().ScrollUp(s.scrollTop, s.scrollBottom+1, o.N)
	case OpScrollDown:
		s.buffer().ScrollDown(s.scrollTop, s.scrollBottom+1, o.N)
	case OpSetScrollRegion:
		s.setScrollRegion(o.Top, o.Bottom)
	case OpSetAttrs:
		s.setAttrs(o.Attrs)
	case OpSetMode:
		s.setMode(o.Mode, o.Enable)
	case OpSetCursorStyle:
		s.cursor.Style = o.Style
	case OpSaveCursor:
		s.saveCursor()
	case OpRestoreCursor:
		s.restoreCursor()
	case OpReverseIndex:
		s.reverseIndex()
	case OpNextLine:
		s.lineFeed()
		s.cursor.Col = 0
	case OpSetTitle:
		s.title = o.Title
		s.titleCb.SetTitle(o.Title)
	case OpSetTabStop:
		s.buffer().SetTabStop(s.cursor.Col)
	case OpClearTabs:
		switch o.Mode {
		case TabClearCurrent:
			s.buffer().ClearTabStop(s.cursor.Col)
		case TabClearAll:
			s.buffer().ClearAllTabStops()
		}
	case OpConfigureCharset:
		if o.Slot >= 0 && o.Slot < len(s.charsets) {
			s.charsets[o.Slot] = o.Charset
		}
	case OpSelectCharset:
		if o.Slot >= 0 && o.Slot < len(s.charsets) {
			s.activeCharset = o.Slot
		}
	case OpReset:
		s.reset()
	case OpAlignmentTest:
		s.buffer().FillWithE()
	case OpDeviceStatus:
		s.deviceStatus(o.N)
	case OpIdentify:
		fmt.Fprint(s.response, "\x1b[?6c")
	}
}

func (s *Screen) print(r rune) {
	if s.activeCharset < len(s.charsets) && s.charsets[s.activeCharset] == CharsetLineDrawing {
		if mapped, ok := lineDrawingChars[r]; ok {
			r = mapped
		}
	}

	width := runeWidth(r)
	if width == 0 {
		// Zero-width characters attach to the previous cell; drop them to
		// keep the grid one-rune-per-cell.
		return
	}

	buf := s.buffer()
	if s.cursor.Col+width > s.cols {
		if s.modes&ModeLineWrap != 0 {
			buf.SetWrapped(s.cursor.Row, true)
			s.lineFeed()
			s.cursor.Col = 0
			buf = s.buffer()
		} else {
			s.cursor.Col = s.cols - width
			if s.cursor.Col < 0 {
				s.cursor.Col = 0
			}
		}
	}

	if s.modes&ModeInsert != 0 {
		buf.InsertBlanks(s.cursor.Row, s.cursor.Col, width)
	}

	cell := s.template.Cell
	cell.Char = r
	if width == 2 {
		cell.SetFlag(CellFlagWideChar)
	}
	buf.SetCell(s.cursor.Row, s.cursor.Col, cell)

	if width == 2 && s.cursor.Col+1 < s.cols {
		spacer := s.template.Cell
		spacer.Char = ' '
		spacer.SetFlag(CellFlagWideCharSpacer)
		buf.SetCell(s.cursor.Row, s.cursor.Col+1, spacer)
	}

	s.cursor.Col += width
	if s.cursor.Col > s.cols {
		s.cursor.Col = s.cols
	}
}

// lineFeed moves the cursor down one row, scrolling the region if the
// cursor sits on the bottom margin.
func (s *Screen) lineFeed() {
	if s.cursor.Row == s.scrollBottom {
		s.scrollUp(1)
	} else if s.cursor.Row < s.rows-1 {
		s.cursor.Row++
	}
}

func (s *Screen) reverseIndex() {
	if s.cursor.Row == s.scrollTop {
		s.buffer().ScrollDown(s.scrollTop, s.scrollBottom+1, 1)
	} else if s.cursor.Row > 0 {
		s.cursor.Row--
	}
}

// scrollUp is the line-feed scroll: unlike explicit scroll sequences it
// records displaced lines in scrollback.
func (s *Screen) scrollUp(n int) {
	s.buffer().ScrollUpIntoScrollback(s.scrollTop, s.scrollBottom+1, n)
}

// goTo moves the cursor to a 0-based row/column, honoring origin mode.
func (s *Screen) goTo(row, col int) {
	if s.modes&ModeOrigin != 0 {
		row += s.scrollTop
		row = clamp(row, s.scrollTop, s.scrollBottom)
	} else {
		row = clamp(row, 0, s.rows-1)
	}
	s.cursor.Row = row
	s.cursor.Col = clamp(col, 0, s.cols-1)
}

// regionTopFor returns the upper bound for relative cursor movement from
// the given row: the scroll region top if the cursor is inside the region,
// otherwise the screen top.
func (s *Screen) regionTopFor(row int) int {
	if row >= s.scrollTop {
		return s.scrollTop
	}
	return 0
}

func (s *Screen) regionBottomFor(row int) int {
	if row <= s.scrollBottom {
		return s.scrollBottom
	}
	return s.rows - 1
}

func (s *Screen) inScrollRegion() bool {
	return s.cursor.Row >= s.scrollTop && s.cursor.Row <= s.scrollBottom
}

func (s *Screen) setScrollRegion(top, bottom int) {
	// Parameters arrive 1-based; 0 means default.
	t := top - 1
	b := bottom - 1
	if top == 0 {
		t = 0
	}
	if bottom == 0 || b > s.rows-1 {
		b = s.rows - 1
	}
	if t < 0 {
		t = 0
	}
	if t >= b {
		return
	}
	s.scrollTop = t
	s.scrollBottom = b
	s.goTo(0, 0)
}

func (s *Screen) eraseLine(mode LineClearMode) {
	buf := s.buffer()
	row := s.cursor.Row
	switch mode {
	case LineClearRight:
		buf.ClearRowRange(row, s.cursor.Col, s.cols)
	case LineClearLeft:
		buf.ClearRowRange(row, 0, s.cursor.Col+1)
	case LineClearAll:
		buf.ClearRow(row)
	}
}

func (s *Screen) eraseScreen(mode ScreenClearMode) {
	buf := s.buffer()
	switch mode {
	case ScreenClearBelow:
		buf.ClearRowRange(s.cursor.Row, s.cursor.Col, s.cols)
		for row := s.cursor.Row + 1; row < s.rows; row++ {
			buf.ClearRow(row)
		}
	case ScreenClearAbove:
		for row := 0; row < s.cursor.Row; row++ {
			buf.ClearRow(row)
		}
		buf.ClearRowRange(s.cursor.Row, 0, s.cursor.Col+1)
	case ScreenClearAll:
		buf.ClearAll()
	case ScreenClearSaved:
		buf.ClearScrollback()
	}
}

func (s *Screen) eraseChars(n int) {
	s.buffer().ClearRowRange(s.cursor.Row, s.cursor.Col, s.cursor.Col+n)
}

func (s *Screen) setAttrs(attrs []CharAttr) {
	for _, a := range attrs {
		switch a.Kind {
		case AttrReset:
			s.template.Cell.Reset()
		case AttrBold:
			s.template.Cell.SetFlag(CellFlagBold)
		case AttrDim:
			s.template.Cell.SetFlag(CellFlagDim)
		case AttrItalic:
			s.template.Cell.SetFlag(CellFlagItalic)
		case AttrUnderline:
			s.template.Cell.SetFlag(CellFlagUnderline)
		case AttrBlink:
			s.template.Cell.SetFlag(CellFlagBlink)
		case AttrReverse:
			s.template.Cell.SetFlag(CellFlagReverse)
		case AttrHidden:
			s.template.Cell.SetFlag(CellFlagHidden)
		case AttrStrike:
			s.template.Cell.SetFlag(CellFlagStrike)
		case AttrCancelBoldDim:
			s.template.Cell.ClearFlag(CellFlagBold)
			s.template.Cell.ClearFlag(CellFlagDim)
		case AttrCancelItalic:
			s.template.Cell.ClearFlag(CellFlagItalic)
		case AttrCancelUnderline:
			s.template.Cell.ClearFlag(CellFlagUnderline)
		case AttrCancelBlink:
			s.template.Cell.ClearFlag(CellFlagBlink)
		case AttrCancelReverse:
			s.template.Cell.ClearFlag(CellFlagReverse)
		case AttrCancelHidden:
			s.template.Cell.ClearFlag(CellFlagHidden)
		case AttrCancelStrike:
			s.template.Cell.ClearFlag(CellFlagStrike)
		case AttrForeground:
			s.template.Cell.Fg = a.Color
		case AttrBackground:
			s.template.Cell.Bg = a.Color
		}
	}
}

func (s *Screen) setMode(mode TerminalMode, enable bool) {
	switch mode {
	case ModeAltScreen:
		s.switchAltScreen(enable, false)
		return
	case ModeSwapScreenAndSetRestoreCursor:
		s.switchAltScreen(enable, true)
		return
	}
	if enable {
		s.modes |= mode
	} else {
		s.modes &^= mode
	}
	if mode == ModeShowCursor {
		s.cursor.Visible = enable
	}
}

// switchAltScreen swaps between the primary and alternate buffers. The
// primary buffer is left untouched while the alternate is active, so its
// contents are identical after a round trip. With saveCursor set (mode
// 1049) the cursor is saved on entry and restored on exit, and the
// alternate buffer is cleared on entry.
func (s *Screen) switchAltScreen(enable, saveCursor bool) {
	if enable == s.altActive {
		return
	}
	if enable {
		if saveCursor {
			s.saveCursor()
		}
		s.altActive = true
		s.modes |= ModeAltScreen
		if saveCursor {
			s.modes |= ModeSwapScreenAndSetRestoreCursor
			s.alternate.ClearAll()
			s.cursor.Row = 0
			s.cursor.Col = 0
		}
		s.alternate.MarkAllDirty()
	} else {
		s.altActive = false
		s.modes &^= ModeAltScreen | ModeSwapScreenAndSetRestoreCursor
		if saveCursor {
			s.restoreCursor()
		}
		s.primary.MarkAllDirty()
	}
}

// saveState captures the cursor-adjacent state restored by DECRC.
func (s *Screen) saveState() SavedCursor {
	return SavedCursor{
		Row:          s.cursor.Row,
		Col:          s.cursor.Col,
		Attrs:        s.template,
		OriginMode:   s.modes&ModeOrigin != 0,
		CharsetIndex: s.activeCharset,
		Charsets:     s.charsets,
	}
}

func (s *Screen) saveCursor() {
	if s.altActive {
		s.savedAlt = s.saveState()
	} else {
		s.savedPrimary = s.saveState()
	}
}

func (s *Screen) restoreCursor() {
	saved := s.savedPrimary
	if s.altActive {
		saved = s.savedAlt
	}
	s.cursor.Row = clamp(saved.Row, 0, s.rows-1)
	s.cursor.Col = clamp(saved.Col, 0, s.cols-1)
	s.template = saved.Attrs
	s.activeCharset = saved.CharsetIndex
	s.charsets = saved.Charsets
	if saved.OriginMode {
		s.modes |= ModeOrigin
	} else {
		s.modes &^= ModeOrigin
	}
}

func (s *Screen) reset() {
	s.primary.ClearAll()
	s.alternate.ClearAll()
	s.primary.ResetTabStops()
	s.alternate.ResetTabStops()
	s.altActive = false
	s.cursor = NewCursor()
	s.template = NewCellTemplate()
	s.charsets = [2]Charset{CharsetASCII, CharsetASCII}
	s.activeCharset = 0
	s.scrollTop = 0
	s.scrollBottom = s.rows - 1
	s.modes = defaultModes
	s.title = ""
	s.savedPrimary = s.saveState()
	s.savedAlt = s.saveState()
}

func (s *Screen) deviceStatus(n int) {
	switch n {
	case 5:
		fmt.Fprint(s.response, "\x1b[0n")
	case 6:
		row := s.cursor.Row
		if s.modes&ModeOrigin != 0 {
			row -= s.scrollTop
		}
		fmt.Fprintf(s.response, "\x1b[%d;%dR", row+1, s.cursor.Col+1)
	}
}

// Resize changes the terminal dimensions. Existing content is preserved
// from the top-left, the cursor is clamped, and the scroll region is reset
// to the full screen.
func (s *Screen) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows == s.rows && cols == s.cols {
		return
	}
	s.primary.Resize(rows, cols)
	s.alternate.Resize(rows, cols)
	s.rows = rows
	s.cols = cols
	s.scrollTop = 0
	s.scrollBottom = rows - 1
	s.cursor.Row = clamp(s.cursor.Row, 0, rows-1)
	s.cursor.Col = clamp(s.cursor.Col, 0, cols-1)
}

// Rows returns the number of rows.
func (s *Screen) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Cols returns the number of columns.
func (s *Screen) Cols() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols
}

// Cell returns a copy of the cell at the given position on the active
// buffer. Returns a blank cell if out of range.
func (s *Screen) Cell(row, col int) Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.buffer().Cell(row, col); c != nil {
		return *c
	}
	return NewCell()
}

// CursorPos returns the current cursor row and column.
func (s *Screen) CursorPos() (row, col int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Row, s.cursor.Col
}

// CursorVisible reports whether the cursor is visible.
func (s *Screen) CursorVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes&ModeShowCursor != 0
}

// CursorStyle returns the current cursor style.
func (s *Screen) CursorStyle() CursorStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Style
}

// Title returns the window title set via OSC 0/2, or "".
func (s *Screen) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// HasMode reports whether the given mode is enabled.
func (s *Screen) HasMode(mode TerminalMode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes&mode != 0
}

// IsAlternateScreen reports whether the alternate buffer is active.
func (s *Screen) IsAlternateScreen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.altActive
}

// ScrollRegion returns the current scroll margins as 0-based inclusive
// rows.
func (s *Screen) ScrollRegion() (top, bottom int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrollTop, s.scrollBottom
}

// LineContent returns the text content of the given row on the active
// buffer, with trailing whitespace removed.
func (s *Screen) LineContent(row int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer().LineContent(row)
}

// String renders the visible grid as plain text, one line per row.
func (s *Screen) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sb strings.Builder
	for row := 0; row < s.rows; row++ {
		sb.WriteString(s.buffer().LineContent(row))
		if row < s.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ScrollbackLen returns the number of lines in the primary buffer's
// scrollback.
func (s *Screen) ScrollbackLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.ScrollbackLen()
}

// ScrollbackLine returns the scrollback line at index, 0 being the oldest.
func (s *Screen) ScrollbackLine(index int) []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.ScrollbackLine(index)
}

// DirtyRows returns the rows changed since the last ClearDirty, sorted
// ascending, for the active buffer.
func (s *Screen) DirtyRows() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer().DirtyRows()
}

// ClearDirty resets dirty-row tracking on both buffers.
func (s *Screen) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary.ClearDirty()
	s.alternate.ClearDirty()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
