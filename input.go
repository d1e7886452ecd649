package editorterm

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Translator converts host UI events into the byte sequences a terminal
// application expects. Events with no terminal meaning translate to nil.
//
// The translator tracks the terminal modes that change key encodings
// (application cursor keys, bracketed paste, mouse reporting); a Session
// keeps these in sync with the emulated screen.
type Translator struct {
	term string

	appCursorKeys  bool
	bracketedPaste bool
	reportClicks   bool
	reportMotion   bool
	reportAll      bool
	sgrMouse       bool

	lastButtons tcell.ButtonMask
}

// NewTranslator creates a translator for the given terminal type. The
// terminal type decides encodings that differ between terminals, such as
// the backspace byte.
func NewTranslator(term string) *Translator {
	if term == "" {
		term = DefaultTerm
	}
	return &Translator{term: term}
}

// SetAppCursorKeys switches arrow keys between CSI and SS3 encodings
// (DECCKM).
func (t *Translator) SetAppCursorKeys(enable bool) {
	t.appCursorKeys = enable
}

// SetBracketedPaste controls whether pasted text is wrapped in paste
// markers.
func (t *Translator) SetBracketedPaste(enable bool) {
	t.bracketedPaste = enable
}

// SetMouseReporting configures which mouse events are reported and
// whether the SGR encoding is active.
func (t *Translator) SetMouseReporting(clicks, motion, all, sgr bool) {
	t.reportClicks = clicks
	t.reportMotion = motion
	t.reportAll = all
	t.sgrMouse = sgr
}

// Translate converts a tcell event to terminal input bytes. Returns nil
// for events the terminal has no use for.
func (t *Translator) Translate(ev tcell.Event) []byte {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return t.TranslateKey(e)
	case *tcell.EventMouse:
		return t.TranslateMouse(e)
	case *tcell.EventPaste:
		// Paste content arrives separately; the markers alone carry no
		// bytes for the subprocess.
		return nil
	default:
		return nil
	}
}

// TranslateKey converts a key event to bytes.
func (t *Translator) TranslateKey(ev *tcell.EventKey) []byte {
	alt := ev.Modifiers()&tcell.ModAlt != 0

	switch ev.Key() {
	case tcell.KeyUp:
		return t.cursorKey('A', alt)
	case tcell.KeyDown:
		return t.cursorKey('B', alt)
	case tcell.KeyRight:
		return t.cursorKey('C', alt)
	case tcell.KeyLeft:
		return t.cursorKey('D', alt)
	case tcell.KeyHome:
		return t.cursorKey('H', alt)
	case tcell.KeyEnd:
		return t.cursorKey('F', alt)
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyInsert:
		return []byte("\x1b[2~")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyF1:
		return []byte("\x1bOP")
	case tcell.KeyF2:
		return []byte("\x1bOQ")
	case tcell.KeyF3:
		return []byte("\x1bOR")
	case tcell.KeyF4:
		return []byte("\x1bOS")
	case tcell.KeyF5:
		return []byte("\x1b[15~")
	case tcell.KeyF6:
		return []byte("\x1b[17~")
	case tcell.KeyF7:
		return []byte("\x1b[18~")
	case tcell.KeyF8:
		return []byte("\x1b[19~")
	case tcell.KeyF9:
		return []byte("\x1b[20~")
	case tcell.KeyF10:
		return []byte("\x1b[21~")
	case tcell.KeyF11:
		return []byte("\x1b[23~")
	case tcell.KeyF12:
		return []byte("\x1b[24~")
	case tcell.KeyEnter:
		return []byte("\r")
	case tcell.KeyTab:
		return []byte("\t")
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return t.backspace(alt)
	case tcell.KeyEsc:
		return []byte("\x1b")
	case tcell.KeyRune:
		var buf []byte
		if alt {
			buf = append(buf, 0x1b)
		}
		return append(buf, []byte(string(ev.Rune()))...)
	}

	// Control chords (Ctrl-A .. Ctrl-_) map directly to C0 bytes.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlUnderscore {
		var buf []byte
		if alt {
			buf = append(buf, 0x1b)
		}
		return append(buf, byte(k))
	}

	return nil
}

// backspace returns DEL for xterm-style terminals and BS for the linux
// console, matching what those terminals' own keyboards send.
func (t *Translator) backspace(alt bool) []byte {
	b := byte(0x7f)
	if t.term == "linux" || strings.HasPrefix(t.term, "linux-") {
		b = 0x08
	}
	if alt {
		return []byte{0x1b, b}
	}
	return []byte{b}
}

func (t *Translator) cursorKey(final byte, alt bool) []byte {
	var buf []byte
	if alt {
		buf = append(buf, 0x1b)
	}
	if t.appCursorKeys {
		return append(buf, 0x1b, 'O', final)
	}
	return append(buf, 0x1b, '[', final)
}

// TranslatePaste wraps pasted text in bracketed-paste markers when the
// application enabled them, otherwise returns the raw bytes.
func (t *Translator) TranslatePaste(text string) []byte {
	if t.bracketedPaste {
		var sb strings.Builder
		sb.WriteString("\x1b[200~")
		sb.WriteString(text)
		sb.WriteString("\x1b[201~")
		return []byte(sb.String())
	}
	return []byte(text)
}

// TranslateMouse converts a mouse event to an SGR (1006) mouse report.
// Returns nil when the application has not enabled mouse reporting, or
// when the event is filtered out by the active reporting mode.
func (t *Translator) TranslateMouse(ev *tcell.EventMouse) []byte {
	if !t.sgrMouse || (!t.reportClicks && !t.reportMotion && !t.reportAll) {
		return nil
	}

	x, y := ev.Position()
	buttons := ev.Buttons()

	pressed := buttons &^ t.lastButtons
	released := t.lastButtons &^ buttons
	t.lastButtons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	mods := 0
	if ev.Modifiers()&tcell.ModShift != 0 {
		mods |= 4
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mods |= 8
	}
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		mods |= 16
	}

	switch {
	case buttons&tcell.WheelUp != 0:
		return sgrReport(64+mods, x, y, true)
	case buttons&tcell.WheelDown != 0:
		return sgrReport(65+mods, x, y, true)
	case pressed != 0:
		return sgrReport(buttonCode(pressed)+mods, x, y, true)
	case released != 0:
		return sgrReport(buttonCode(released)+mods, x, y, false)
	default:
		// Motion with no button change.
		held := buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		if held != 0 && (t.reportMotion || t.reportAll) {
			return sgrReport(buttonCode(held)+32+mods, x, y, true)
		}
		if held == 0 && t.reportAll {
			return sgrReport(3+32+mods, x, y, true)
		}
		return nil
	}
}

// buttonCode maps tcell buttons to X10 codes: 0 left, 1 middle, 2 right.
func buttonCode(buttons tcell.ButtonMask) int {
	switch {
	case buttons&tcell.Button1 != 0:
		return 0
	case buttons&tcell.Button3 != 0:
		return 1
	case buttons&tcell.Button2 != 0:
		return 2
	default:
		return 3
	}
}

func sgrReport(code, x, y int, press bool) []byte {
	final := byte('m')
	if press {
		final = 'M'
	}
	buf := make([]byte, 0, 16)
	buf = append(buf, "\x1b[<"...)
	buf = strconv.AppendInt(buf, int64(code), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(x+1), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(y+1), 10)
	buf = append(buf, final)
	return buf
}
