package proto

// SLIP special character codes, rfc1055.
const (
	END     byte = 0xC0 // indicates end of packet
	ESC     byte = 0xDB // indicates byte stuffing
	ESC_END byte = 0xDC // ESC ESC_END means END data byte
	ESC_ESC byte = 0xDD // ESC ESC_ESC means ESC data byte
)

// MaxFrameSize is the largest unescaped frame the framer will assemble.
// Bytes of a larger frame are discarded until its closing delimiter.
const MaxFrameSize = 4096

// ByteTransport is the raw byte boundary of the endpoint. The framer is
// the only code that touches it.
type ByteTransport interface {
	SendByte(b byte) error
	RecvByte() (byte, error)
	HasData() bool
}

// Flusher is implemented by transports that buffer outgoing bytes.
type Flusher interface {
	Flush() error
}

// Framer delimits packets over a ByteTransport using SLIP framing.
// Receive state is kept across calls, so partially delivered frames may be
// consumed one byte at a time.
type Framer struct {
	t       ByteTransport
	buf     []byte
	escaped bool
	overrun bool
}

func NewFramer(t ByteTransport) *Framer {
	return &Framer{
		t:   t,
		buf: make([]byte, 0, 128),
	}
}

// SendPacket transmits data as one frame. A delimiter is sent up front as
// well, so line noise before the frame is thrown away by the receiver.
func (f *Framer) SendPacket(data []byte) error {
	if err := f.t.SendByte(END); err != nil {
		return err
	}
	for _, b := range data {
		var err error
		switch b {
		case END:
			err = f.sendEscaped(ESC_END)
		case ESC:
			err = f.sendEscaped(ESC_ESC)
		default:
			err = f.t.SendByte(b)
		}
		if err != nil {
			return err
		}
	}
	if err := f.t.SendByte(END); err != nil {
		return err
	}
	if fl, ok := f.t.(Flusher); ok {
		return fl.Flush()
	}
	return nil
}

func (f *Framer) sendEscaped(code byte) error {
	if err := f.t.SendByte(ESC); err != nil {
		return err
	}
	return f.t.SendByte(code)
}

// Poll consumes bytes the transport already has and returns a complete
// frame if one was assembled, or nil. It never blocks, so the dispatch
// loop can interleave keyboard and network polling.
func (f *Framer) Poll() ([]byte, error) {
	for f.t.HasData() {
		b, err := f.t.RecvByte()
		if err != nil {
			return nil, err
		}
		if frame, ok := f.scan(b); ok {
			return frame, nil
		}
	}
	return nil, nil
}

// RecvPacket blocks until one complete frame is assembled.
func (f *Framer) RecvPacket() ([]byte, error) {
	for {
		b, err := f.t.RecvByte()
		if err != nil {
			return nil, err
		}
		if frame, ok := f.scan(b); ok {
			return frame, nil
		}
	}
}

// scan feeds one transport byte into the receive state machine. Empty
// frames are suppressed: back-to-back delimiters carry no packet.
func (f *Framer) scan(b byte) ([]byte, bool) {
	switch {
	case b == END:
		if f.overrun {
			f.overrun = false
			f.escaped = false
			return nil, false
		}
		if len(f.buf) == 0 {
			return nil, false
		}
		frame := make([]byte, len(f.buf))
		copy(frame, f.buf)
		f.buf = f.buf[:0]
		f.escaped = false
		return frame, true
	case f.overrun:
		return nil, false
	case b == ESC:
		f.escaped = true
	case f.escaped:
		f.escaped = false
		switch b {
		case ESC_END:
			f.push(END)
		case ESC_ESC:
			f.push(ESC)
		default:
			// not a defined escape code, keep the byte as-is
			f.push(b)
		}
	default:
		f.push(b)
	}
	return nil, false
}

func (f *Framer) push(b byte) {
	if len(f.buf) >= MaxFrameSize {
		f.buf = f.buf[:0]
		f.overrun = true
		return
	}
	f.buf = append(f.buf, b)
}
