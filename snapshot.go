package editorterm

import (
	"fmt"
	"image/color"
)

// SnapshotDetail controls how much information a snapshot carries.
type SnapshotDetail int

const (
	// SnapshotText captures plain text only.
	SnapshotText SnapshotDetail = iota
	// SnapshotStyled captures text plus styled segments (runs of cells
	// sharing the same attributes).
	SnapshotStyled
	// SnapshotFull captures every cell individually.
	SnapshotFull
)

// Snapshot is an immutable copy of the visible terminal state, safe to
// hand to a renderer on another goroutine. All fields are value types;
// mutating a snapshot never affects the live screen.
type Snapshot struct {
	Size      SnapshotSize   `json:"size"`
	Cursor    SnapshotCursor `json:"cursor"`
	Title     string         `json:"title,omitempty"`
	AltScreen bool           `json:"alt_screen,omitempty"`
	Lines     []SnapshotLine `json:"lines"`
}

// SnapshotSize holds the grid dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds the cursor state at capture time.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style,omitempty"`
}

// SnapshotLine is one visible row.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Wrapped  bool              `json:"wrapped,omitempty"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment is a run of consecutive cells sharing the same
// attributes.
type SnapshotSegment struct {
	Text  string        `json:"text"`
	Start int           `json:"start"`
	Attrs SnapshotAttrs `json:"attrs"`
}

// SnapshotCell is a single cell in a full-detail snapshot.
type SnapshotCell struct {
	Char  string        `json:"char"`
	Width int           `json:"width"`
	Attrs SnapshotAttrs `json:"attrs"`
}

// SnapshotAttrs is the renderable attribute set of a cell or segment.
// Colors are "#rrggbb" strings resolved against the default palette.
type SnapshotAttrs struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Dim       bool   `json:"dim,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Blink     bool   `json:"blink,omitempty"`
	Reverse   bool   `json:"reverse,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
	Strike    bool   `json:"strike,omitempty"`
}

// Snapshot captures the current visible state at the given detail level.
func (s *Screen) Snapshot(detail SnapshotDetail) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Size: SnapshotSize{Rows: s.rows, Cols: s.cols},
		Cursor: SnapshotCursor{
			Row:     s.cursor.Row,
			Col:     s.cursor.Col,
			Visible: s.modes&ModeShowCursor != 0,
			Style:   cursorStyleToString(s.cursor.Style),
		},
		Title:     s.title,
		AltScreen: s.altActive,
		Lines:     make([]SnapshotLine, s.rows),
	}

	buf := s.buffer()
	for row := 0; row < s.rows; row++ {
		line := SnapshotLine{
			Text:    buf.LineContent(row),
			Wrapped: buf.IsWrapped(row),
		}
		switch detail {
		case SnapshotStyled:
			line.Segments = s.segmentsForRow(buf, row)
		case SnapshotFull:
			line.Cells = s.cellsForRow(buf, row)
		}
		snap.Lines[row] = line
	}

	return snap
}

func (s *Screen) segmentsForRow(buf *Buffer, row int) []SnapshotSegment {
	var segments []SnapshotSegment
	var current *SnapshotSegment
	var runes []rune

	flush := func() {
		if current != nil {
			current.Text = string(runes)
			segments = append(segments, *current)
			current = nil
			runes = nil
		}
	}

	for col := 0; col < buf.Cols(); col++ {
		cell := buf.Cell(row, col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}
		attrs := cellAttrs(cell)
		if current == nil || attrs != current.Attrs {
			flush()
			current = &SnapshotSegment{Start: col, Attrs: attrs}
		}
		runes = append(runes, cell.Char)
	}
	flush()

	return segments
}

func (s *Screen) cellsForRow(buf *Buffer, row int) []SnapshotCell {
	cells := make([]SnapshotCell, 0, buf.Cols())
	for col := 0; col < buf.Cols(); col++ {
		cell := buf.Cell(row, col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}
		width := 1
		if cell.IsWide() {
			width = 2
		}
		cells = append(cells, SnapshotCell{
			Char:  string(cell.Char),
			Width: width,
			Attrs: cellAttrs(cell),
		})
	}
	return cells
}

func cellAttrs(cell *Cell) SnapshotAttrs {
	return SnapshotAttrs{
		Fg:        colorToHex(ResolveColor(cell.Fg, true)),
		Bg:        colorToHex(ResolveColor(cell.Bg, false)),
		Bold:      cell.HasFlag(CellFlagBold),
		Dim:       cell.HasFlag(CellFlagDim),
		Italic:    cell.HasFlag(CellFlagItalic),
		Underline: cell.HasFlag(CellFlagUnderline),
		Blink:     cell.HasFlag(CellFlagBlink),
		Reverse:   cell.HasFlag(CellFlagReverse),
		Hidden:    cell.HasFlag(CellFlagHidden),
		Strike:    cell.HasFlag(CellFlagStrike),
	}
}

func colorToHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock:
		return "blinking-block"
	case CursorStyleSteadyBlock:
		return "steady-block"
	case CursorStyleBlinkingUnderline:
		return "blinking-underline"
	case CursorStyleSteadyUnderline:
		return "steady-underline"
	case CursorStyleBlinkingBar:
		return "blinking-bar"
	case CursorStyleSteadyBar:
		return "steady-bar"
	default:
		return "blinking-block"
	}
}
