package session

// DefaultKeyBufferSize matches the keystroke buffer of the original
// endpoint hardware profile.
const DefaultKeyBufferSize = 64

// KeyBuffer is a bounded queue of captured keystrokes awaiting a
// POLL_KEYBOARD drain. On overflow the oldest keystrokes are evicted:
// a controller that polls too slowly has already lost interest in stale
// keys, and refusing capture would stall local typing.
//
// The buffer is owned and mutated only by the dispatch loop, so it does
// not lock.
type KeyBuffer struct {
	maxLen int
	keys   []byte
}

func NewKeyBuffer(maxLen int) *KeyBuffer {
	if maxLen <= 0 {
		maxLen = DefaultKeyBufferSize
	}
	return &KeyBuffer{
		maxLen: maxLen,
		keys:   make([]byte, 0, maxLen),
	}
}

func (b *KeyBuffer) Put(c byte) {
	if len(b.keys) >= b.maxLen {
		copy(b.keys, b.keys[1:])
		b.keys = b.keys[:len(b.keys)-1]
	}
	b.keys = append(b.keys, c)
}

// Drain returns the captured keystrokes in capture order and clears the
// buffer.
func (b *KeyBuffer) Drain() []byte {
	keys := make([]byte, len(b.keys))
	copy(keys, b.keys)
	b.keys = b.keys[:0]

	return keys
}

func (b *KeyBuffer) Len() int {
	return len(b.keys)
}
