package console

import (
	"bufio"
	"os"

	"golang.org/x/term"
)

// Region-switch escape sequences of the attached terminal: 'k' selects
// the remote display region, 'j' returns to the keyboard region.
const (
	regionDisplay  = 'k'
	regionKeyboard = 'j'
)

// Raw is the device-native console: stdin switched to raw mode, writes
// going straight to stdout. Escape sequences in display output pass
// through verbatim.
type Raw struct {
	in           *os.File
	out          *os.File
	state        *term.State
	keys         chan byte
	regionSwitch bool
}

// NewRaw puts the controlling terminal into raw mode and starts the key
// pump. With regionSwitch set, remote display bursts are bracketed with
// the region-switch sequences and the terminal starts out in the
// keyboard region.
func NewRaw(regionSwitch bool) (*Raw, error) {
	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}

	r := &Raw{
		in:           os.Stdin,
		out:          os.Stdout,
		state:        state,
		keys:         make(chan byte, 256),
		regionSwitch: regionSwitch,
	}
	if regionSwitch {
		if err := r.switchRegion(regionKeyboard); err != nil {
			term.Restore(int(r.in.Fd()), state)
			return nil, err
		}
	}
	go r.pump()

	return r, nil
}

func (r *Raw) pump() {
	buf := bufio.NewReaderSize(r.in, 256)

	var b byte
	var err error
	for b, err = buf.ReadByte(); err == nil; b, err = buf.ReadByte() {
		r.keys <- b
	}
	close(r.keys)
}

func (r *Raw) ReadKey() (byte, bool) {
	select {
	case b, ok := <-r.keys:
		if !ok {
			return 0, false
		}
		return b, true
	default:
		return 0, false
	}
}

func (r *Raw) WriteChar(c byte) error {
	_, err := r.out.Write([]byte{c})
	return err
}

func (r *Raw) EnterDisplay() error {
	if !r.regionSwitch {
		return nil
	}
	return r.switchRegion(regionDisplay)
}

func (r *Raw) LeaveDisplay() error {
	if !r.regionSwitch {
		return nil
	}
	return r.switchRegion(regionKeyboard)
}

func (r *Raw) switchRegion(region byte) error {
	_, err := r.out.Write([]byte{0x1B, region})
	return err
}

func (r *Raw) Close() error {
	return term.Restore(int(r.in.Fd()), r.state)
}
