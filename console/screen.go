package console

import (
	"github.com/gdamore/tcell"
)

const screenKeyBacklog = 256

// Screen is a managed glass-tty console on top of a tcell screen. It
// keeps a line buffer, scrolls when the screen fills up, and drops
// non-printable bytes instead of interpreting them; pick the raw console
// when remote escape sequences must reach the terminal verbatim.
type Screen struct {
	scr   tcell.Screen
	keys  chan byte
	lines [][]rune
}

func NewScreen() (*Screen, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := scr.Init(); err != nil {
		return nil, err
	}
	scr.SetStyle(tcell.StyleDefault)
	scr.Clear()
	scr.Show()

	s := &Screen{
		scr:   scr,
		keys:  make(chan byte, screenKeyBacklog),
		lines: [][]rune{nil},
	}
	go s.pump()

	return s, nil
}

func (s *Screen) pump() {
	for {
		ev := s.scr.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if b, ok := keyByte(ev); ok {
				select {
				case s.keys <- b:
				default:
					// backlog full, key is lost
				}
			}
		case *tcell.EventResize:
			s.scr.Sync()
		case nil:
			// screen finalized
			close(s.keys)
			return
		}
	}
}

// keyByte maps a tcell key event to the single byte the protocol can
// carry. Function keys have no single-byte form and are dropped.
func keyByte(ev *tcell.EventKey) (byte, bool) {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r < 0x80 {
			return byte(r), true
		}
		return 0, false
	}
	if k := ev.Key(); k < 0x80 {
		return byte(k), true
	}
	return 0, false
}

func (s *Screen) ReadKey() (byte, bool) {
	select {
	case b, ok := <-s.keys:
		if !ok {
			return 0, false
		}
		return b, true
	default:
		return 0, false
	}
}

func (s *Screen) WriteChar(c byte) error {
	last := len(s.lines) - 1
	switch {
	case c == '\n':
		s.lines = append(s.lines, nil)
	case c == '\r':
		// swallowed, the newline does the work
	case c == 0x08:
		if n := len(s.lines[last]); n > 0 {
			s.lines[last] = s.lines[last][:n-1]
		}
	case c == '\t':
		for {
			s.lines[last] = append(s.lines[last], ' ')
			if len(s.lines[last])%8 == 0 {
				break
			}
		}
	case c < 0x20:
		// other control bytes are not interpreted
	default:
		s.lines[last] = append(s.lines[last], rune(c))
	}

	s.render()
	return nil
}

func (s *Screen) render() {
	w, h := s.scr.Size()

	start := 0
	if len(s.lines) > h {
		start = len(s.lines) - h
	}

	s.scr.Clear()
	cursorX, cursorY := 0, 0
	for y, line := range s.lines[start:] {
		x := 0
		for _, r := range line {
			if x >= w {
				break
			}
			s.scr.SetContent(x, y, r, nil, tcell.StyleDefault)
			x++
		}
		cursorX, cursorY = x, y
	}
	s.scr.ShowCursor(cursorX, cursorY)
	s.scr.Show()
}

func (s *Screen) Close() error {
	s.scr.Fini()
	return nil
}
