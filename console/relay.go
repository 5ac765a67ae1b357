package console

import (
	"io"
	"time"

	"github.com/defsky/uterm/proto"
	"github.com/defsky/uterm/shared"
)

const defaultRelayPollInterval = 50 * time.Millisecond

// Relay is the host-attached console: character I/O is forwarded over a
// second framed transport to a further remote display, speaking the same
// packet protocol from the controller side. Display bytes pass through
// verbatim; polled keystrokes may be transcoded from a configured
// charset.
type Relay struct {
	fr       *proto.Framer
	t        proto.ByteTransport
	charset  shared.Charset
	pending  []byte
	lastPoll time.Time
	interval time.Duration
}

func NewRelay(t proto.ByteTransport, charset shared.Charset) *Relay {
	if charset == "" {
		charset = shared.UTF8
	}
	return &Relay{
		fr:       proto.NewFramer(t),
		t:        t,
		charset:  charset,
		interval: defaultRelayPollInterval,
	}
}

// ReadKey drains keystrokes already fetched from the remote display and
// polls it for new ones at most once per poll interval, so the dispatch
// loop is not stalled by a chatty exchange on every iteration.
func (r *Relay) ReadKey() (byte, bool) {
	if len(r.pending) > 0 {
		c := r.pending[0]
		r.pending = r.pending[1:]
		return c, true
	}

	if time.Since(r.lastPoll) < r.interval {
		return 0, false
	}
	r.lastPoll = time.Now()

	resp, err := r.exchange(proto.CM_POLL_KEYBOARD, nil)
	if err != nil {
		return 0, false
	}
	if resp.Len() > 0 {
		r.pending = append(r.pending, shared.DecodeFrom(r.charset, resp.Bytes())...)
	}
	return r.ReadKey()
}

func (r *Relay) WriteChar(c byte) error {
	_, err := r.exchange(proto.CM_PUSH_DISPLAY, []byte{c})
	return err
}

func (r *Relay) exchange(op proto.Opcode, payload []byte) (*proto.Packet, error) {
	req := &proto.Packet{Opcode: op}
	req.Write(payload)
	if err := r.fr.SendPacket(proto.Marshal(req)); err != nil {
		return nil, err
	}

	frame, err := r.fr.RecvPacket()
	if err != nil {
		return nil, err
	}
	resp, err := proto.Unmarshal(frame)
	if err != nil {
		return nil, err
	}
	if resp.Opcode != op {
		return nil, proto.EInvalidPacket
	}
	return resp, nil
}

func (r *Relay) Close() error {
	if c, ok := r.t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
