package proto

// Opcode identifies a controller command. Responses reuse the opcode of
// the request they answer.
type Opcode byte

const (
	// CM_QUERY_TERMSPEC is controller message.
	//
	// Data structure:
	//  no data
	//
	// Response data:
	//  []byte, fixed string identifying the endpoint terminal
	CM_QUERY_TERMSPEC Opcode = iota

	// CM_POLL_KEYBOARD is controller message.
	//
	// Data structure:
	//  no data
	//
	// Response data:
	//  []byte, captured keystrokes in capture order; the endpoint
	//  keyboard buffer is cleared afterwards
	CM_POLL_KEYBOARD

	// CM_PUSH_DISPLAY is controller message.
	//
	// Data structure:
	//  []byte, characters to write to the local display in order
	//
	// Response data:
	//  no data, acknowledgement only
	CM_PUSH_DISPLAY

	// CM_INTERRUPT is controller message.
	//
	// Data structure:
	//  no data
	//
	// The endpoint terminates immediately and sends no response.
	CM_INTERRUPT
)

func (o Opcode) String() string {
	opName := map[Opcode]string{
		CM_QUERY_TERMSPEC: "QUERY_TERMSPEC",
		CM_POLL_KEYBOARD:  "POLL_KEYBOARD",
		CM_PUSH_DISPLAY:   "PUSH_DISPLAY",
		CM_INTERRUPT:      "INTERRUPT",
	}

	name, ok := opName[o]
	if ok {
		return name
	}

	return "UNKNOWN"
}
