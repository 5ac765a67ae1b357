package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/defsky/uterm/console"
	"github.com/defsky/uterm/proto"
)

// DefaultTermspec is the identifying string reported for
// QUERY_TERMSPEC when no override is configured.
const DefaultTermspec = "unix socket terminal"

const defaultPollInterval = 5 * time.Millisecond

// Option contains some options of session
type Option struct {
	// Termspec is the fixed capability string for QUERY_TERMSPEC.
	Termspec string
	// Echo writes captured keystrokes back to the local display.
	Echo bool
	// KeyBufferSize bounds the keystroke buffer.
	KeyBufferSize int
	// PollInterval is how long the loop sleeps when neither a key nor
	// a frame is pending.
	PollInterval time.Duration
}

// Session is one endpoint lifetime: it owns the framed transport, the
// local console and the keyboard buffer, and answers controller commands
// until interrupted.
type Session struct {
	opt  *Option
	fr   *proto.Framer
	con  console.Console
	keys *KeyBuffer
	log  zerolog.Logger
}

func New(t proto.ByteTransport, con console.Console, opt *Option, log zerolog.Logger) *Session {
	if opt == nil {
		opt = &Option{}
	}
	if opt.Termspec == "" {
		opt.Termspec = DefaultTermspec
	}
	if opt.PollInterval <= 0 {
		opt.PollInterval = defaultPollInterval
	}

	return &Session{
		opt:  opt,
		fr:   proto.NewFramer(t),
		con:  con,
		keys: NewKeyBuffer(opt.KeyBufferSize),
		log:  log,
	}
}

// Run drives the poll-and-dispatch loop. It returns nil when the
// controller sends INTERRUPT and the transport error when sending or
// receiving fails. Console write failures are fatal too: the endpoint is
// useless without its display, and dropping output silently would
// desynchronize the controller's view.
func (s *Session) Run() error {
	for {
		if c, ok := s.con.ReadKey(); ok {
			s.keys.Put(c)
			if s.opt.Echo {
				if err := s.con.WriteChar(c); err != nil {
					return err
				}
			}
			continue
		}

		frame, err := s.fr.Poll()
		if err != nil {
			return err
		}
		if frame == nil {
			time.Sleep(s.opt.PollInterval)
			continue
		}

		done, err := s.dispatch(frame)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatch decodes one frame and services it. Malformed packets and
// unknown opcodes are ignored without a response; only a dead transport
// or console may kill the session.
func (s *Session) dispatch(frame []byte) (bool, error) {
	p, err := proto.Unmarshal(frame)
	if err != nil {
		s.log.Debug().Int("size", len(frame)).Msg("dropping malformed packet")
		return false, nil
	}

	switch p.Opcode {
	case proto.CM_QUERY_TERMSPEC:
		resp := &proto.Packet{Opcode: p.Opcode}
		resp.WriteString(s.opt.Termspec)
		return false, s.respond(resp)

	case proto.CM_POLL_KEYBOARD:
		resp := &proto.Packet{Opcode: p.Opcode}
		resp.Write(s.keys.Drain())
		return false, s.respond(resp)

	case proto.CM_PUSH_DISPLAY:
		if err := s.display(p.Bytes()); err != nil {
			return false, err
		}
		return false, s.respond(&proto.Packet{Opcode: p.Opcode})

	case proto.CM_INTERRUPT:
		s.log.Info().Msg("interrupted by controller")
		return true, nil

	default:
		s.log.Debug().Uint8("opcode", byte(p.Opcode)).Msg("ignoring unknown opcode")
		return false, nil
	}
}

func (s *Session) display(data []byte) error {
	rs, _ := s.con.(console.RegionSwitcher)
	if rs != nil {
		if err := rs.EnterDisplay(); err != nil {
			return err
		}
	}
	for _, c := range data {
		if err := s.con.WriteChar(c); err != nil {
			return err
		}
	}
	if rs != nil {
		return rs.LeaveDisplay()
	}
	return nil
}

func (s *Session) respond(p *proto.Packet) error {
	return s.fr.SendPacket(proto.Marshal(p))
}
