package session

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/defsky/uterm/console"
	"github.com/defsky/uterm/proto"
)

// fakeTransport feeds scripted inbound bytes and records outbound ones.
// Once the input is exhausted it reports a pending read so the loop
// observes err, the same way NetTransport surfaces a dead connection.
type fakeTransport struct {
	in  []byte
	pos int
	out bytes.Buffer
	err error
}

func (t *fakeTransport) SendByte(b byte) error {
	t.out.WriteByte(b)
	return nil
}

func (t *fakeTransport) RecvByte() (byte, error) {
	if t.pos >= len(t.in) {
		if t.err == nil {
			return 0, io.EOF
		}
		return 0, t.err
	}
	b := t.in[t.pos]
	t.pos++
	return b, nil
}

func (t *fakeTransport) HasData() bool {
	return true
}

// wire serializes packets the way a controller would put them on the
// transport.
func wire(t *testing.T, pkts ...*proto.Packet) []byte {
	t.Helper()

	ft := &fakeTransport{}
	fr := proto.NewFramer(ft)
	for _, p := range pkts {
		if err := fr.SendPacket(proto.Marshal(p)); err != nil {
			t.Fatalf("SendPacket: %v", err)
		}
	}
	return ft.out.Bytes()
}

// responses decodes every response packet the endpoint emitted.
func responses(t *testing.T, data []byte) []*proto.Packet {
	t.Helper()

	fr := proto.NewFramer(&fakeTransport{in: data})
	var pkts []*proto.Packet
	for {
		frame, err := fr.Poll()
		if err != nil {
			if err == io.EOF {
				return pkts
			}
			t.Fatalf("Poll: %v", err)
		}
		if frame == nil {
			return pkts
		}
		p, err := proto.Unmarshal(frame)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		pkts = append(pkts, p)
	}
}

func request(op proto.Opcode, payload ...byte) *proto.Packet {
	p := &proto.Packet{Opcode: op}
	p.Write(payload)
	return p
}

func runSession(t *testing.T, ft *fakeTransport, con console.Console, opt *Option) error {
	t.Helper()

	if opt == nil {
		opt = &Option{}
	}
	opt.PollInterval = time.Millisecond
	return New(ft, con, opt, zerolog.Nop()).Run()
}

func TestQueryTermspecIdempotent(t *testing.T) {
	ft := &fakeTransport{in: wire(t,
		request(proto.CM_QUERY_TERMSPEC),
		request(proto.CM_QUERY_TERMSPEC),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, console.NewMemory(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	resps := responses(t, ft.out.Bytes())
	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	for _, r := range resps {
		if r.Opcode != proto.CM_QUERY_TERMSPEC {
			t.Errorf("response opcode = %v", r.Opcode)
		}
		if r.String() != DefaultTermspec {
			t.Errorf("termspec = %q, want %q", r.String(), DefaultTermspec)
		}
	}
}

func TestKeyboardDrain(t *testing.T) {
	con := console.NewMemory()
	con.Press('A', 'B', 'C')

	ft := &fakeTransport{in: wire(t,
		request(proto.CM_POLL_KEYBOARD),
		request(proto.CM_POLL_KEYBOARD),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, con, &Option{Echo: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	resps := responses(t, ft.out.Bytes())
	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	if got := resps[0].String(); got != "ABC" {
		t.Errorf("first drain = %q, want %q", got, "ABC")
	}
	if resps[1].Len() != 0 {
		t.Errorf("second drain = %q, want empty", resps[1].String())
	}

	// captured keys were echoed to the local display
	if got := string(con.Output()); got != "ABC" {
		t.Errorf("echoed output = %q", got)
	}
}

func TestKeyboardNoEcho(t *testing.T) {
	con := console.NewMemory()
	con.Press('x')

	ft := &fakeTransport{in: wire(t,
		request(proto.CM_POLL_KEYBOARD),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, con, &Option{Echo: false}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(con.Output()) != 0 {
		t.Errorf("output = %q, want none", con.Output())
	}
}

func TestKeyboardOverflowDropsOldest(t *testing.T) {
	con := console.NewMemory()
	con.Press('1', '2', '3', '4', '5', '6')

	ft := &fakeTransport{in: wire(t,
		request(proto.CM_POLL_KEYBOARD),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, con, &Option{KeyBufferSize: 4}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	resps := responses(t, ft.out.Bytes())
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}
	if got := resps[0].String(); got != "3456" {
		t.Errorf("drain = %q, want %q", got, "3456")
	}
}

func TestPushDisplay(t *testing.T) {
	con := console.NewMemory()

	ft := &fakeTransport{in: wire(t,
		request(proto.CM_PUSH_DISPLAY, 'O', 'K'),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, con, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := string(con.Output()); got != "OK" {
		t.Errorf("display output = %q, want %q", got, "OK")
	}
	resps := responses(t, ft.out.Bytes())
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}
	if resps[0].Opcode != proto.CM_PUSH_DISPLAY || resps[0].Len() != 0 {
		t.Errorf("ack = %v payload %q", resps[0].Opcode, resps[0].String())
	}
}

func TestInterruptStopsProcessing(t *testing.T) {
	ft := &fakeTransport{in: wire(t,
		request(proto.CM_INTERRUPT),
		request(proto.CM_QUERY_TERMSPEC),
	)}

	if err := runSession(t, ft, console.NewMemory(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// no response to the interrupt, and nothing after it is serviced
	if ft.out.Len() != 0 {
		t.Errorf("endpoint transmitted %d bytes after interrupt", ft.out.Len())
	}
}

func TestUnknownOpcodeIgnored(t *testing.T) {
	ft := &fakeTransport{in: wire(t,
		request(proto.Opcode(0x7F)),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, console.NewMemory(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ft.out.Len() != 0 {
		t.Errorf("unknown opcode produced a response: %v", ft.out.Bytes())
	}
}

func TestMalformedPacketIgnored(t *testing.T) {
	// tag bytes disagree: not a valid packet, silently dropped
	bad := []byte{0xC0, 0x00, 0x01, 0xC0}
	in := append(bad, wire(t, request(proto.CM_INTERRUPT))...)

	if err := runSession(t, &fakeTransport{in: in}, console.NewMemory(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestZeroLengthFrameIgnored(t *testing.T) {
	in := append([]byte{0xC0, 0xC0, 0xC0}, wire(t, request(proto.CM_INTERRUPT))...)

	if err := runSession(t, &fakeTransport{in: in}, console.NewMemory(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestTransportErrorFatal(t *testing.T) {
	ft := &fakeTransport{in: wire(t, request(proto.CM_QUERY_TERMSPEC))}

	err := runSession(t, ft, console.NewMemory(), nil)
	if err != io.EOF {
		t.Errorf("Run = %v, want io.EOF", err)
	}
}

// regionConsole records region switches around display bursts.
type regionConsole struct {
	console.Memory
	trace bytes.Buffer
}

func (c *regionConsole) WriteChar(b byte) error {
	c.trace.WriteByte(b)
	return c.Memory.WriteChar(b)
}

func (c *regionConsole) EnterDisplay() error {
	c.trace.WriteString("<enter>")
	return nil
}

func (c *regionConsole) LeaveDisplay() error {
	c.trace.WriteString("<leave>")
	return nil
}

func TestPushDisplayRegionSwitch(t *testing.T) {
	con := &regionConsole{}

	ft := &fakeTransport{in: wire(t,
		request(proto.CM_PUSH_DISPLAY, 'h', 'i'),
		request(proto.CM_INTERRUPT),
	)}

	if err := runSession(t, ft, con, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := con.trace.String(); got != "<enter>hi<leave>" {
		t.Errorf("trace = %q", got)
	}
}
