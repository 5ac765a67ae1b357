package proto

import (
	"bytes"
	"errors"
)

const tagSize = 2

var EInvalidPacket = errors.New("invalid data packet format")

// Packet wraps one framed command or response.
//
// Packet struct:
// +--------------------------------------------------+
// | 0 byte  | 1 byte  |  2 byte  |      .....        |
// +-------------------+----------+-------------------+
// |    Packet Tag     | Packet Data                   |
// +-------------------+-------------------------------+
// | Opcode  | Opcode  | Payload (0..N bytes)          |
// +--------------------------------------------------+
//
// The opcode byte is written twice; both copies must match on receive.
// The doubled tag is a self-check against stream corruption, not a
// checksum.
type Packet struct {
	bytes.Buffer
	Opcode Opcode
}

// Size return data size in packet
func (p *Packet) Size() int {
	return tagSize + p.Len()
}

func Marshal(p *Packet) []byte {
	b := make([]byte, tagSize, p.Size())
	b[0] = byte(p.Opcode)
	b[1] = byte(p.Opcode)

	return append(b, p.Bytes()...)
}

func Unmarshal(data []byte) (*Packet, error) {
	n := len(data)
	if n < tagSize || data[0] != data[1] {
		return nil, EInvalidPacket
	}
	p := &Packet{Opcode: Opcode(data[0])}

	if n > tagSize {
		p.Write(data[tagSize:])
	}

	return p, nil
}
