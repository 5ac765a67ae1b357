package session

import (
	"bufio"
	"io"
	"net"
)

// NetTransport adapts a net.Conn to the single-byte transport primitives
// the framing layer works with. A receiver goroutine pumps inbound bytes
// into a channel so availability can be checked without blocking.
type NetTransport struct {
	conn   net.Conn
	writer *bufio.Writer
	in     chan byte
	done   chan struct{}
	err    error
}

func NewNetTransport(conn net.Conn) *NetTransport {
	t := &NetTransport{
		conn:   conn,
		writer: bufio.NewWriter(conn),
		in:     make(chan byte, 4096),
		done:   make(chan struct{}),
	}
	go t.receiver()

	return t
}

func (t *NetTransport) receiver() {
	buf := bufio.NewReaderSize(t.conn, 2048)

	var b byte
	var err error
	for b, err = buf.ReadByte(); err == nil; b, err = buf.ReadByte() {
		t.in <- b
	}

	// t.err is published before the channel close, so a reader that
	// observes the closed channel sees it
	t.err = err
	close(t.done)
	close(t.in)
}

func (t *NetTransport) SendByte(b byte) error {
	return t.writer.WriteByte(b)
}

// Flush pushes buffered outgoing bytes onto the wire. The framer calls it
// at every frame boundary.
func (t *NetTransport) Flush() error {
	return t.writer.Flush()
}

func (t *NetTransport) RecvByte() (byte, error) {
	b, ok := <-t.in
	if !ok {
		return 0, t.readErr()
	}
	return b, nil
}

// HasData reports whether RecvByte can return without waiting. A dead
// connection counts: the next RecvByte surfaces the error instead of
// letting the dispatch loop spin forever.
func (t *NetTransport) HasData() bool {
	if len(t.in) > 0 {
		return true
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *NetTransport) Close() error {
	return t.conn.Close()
}

func (t *NetTransport) readErr() error {
	if t.err != nil {
		return t.err
	}
	return io.EOF
}
