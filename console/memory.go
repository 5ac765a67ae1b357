package console

import "bytes"

// Memory is an in-process console for tests: keys are scripted with
// Press, display output is captured.
type Memory struct {
	keys   []byte
	out    bytes.Buffer
	closed bool
}

func NewMemory() *Memory {
	return &Memory{}
}

// Press queues keystrokes for the next ReadKey calls.
func (m *Memory) Press(keys ...byte) {
	m.keys = append(m.keys, keys...)
}

func (m *Memory) ReadKey() (byte, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	c := m.keys[0]
	m.keys = m.keys[1:]
	return c, true
}

func (m *Memory) WriteChar(c byte) error {
	m.out.WriteByte(c)
	return nil
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Output returns everything written to the display so far.
func (m *Memory) Output() []byte {
	return m.out.Bytes()
}

func (m *Memory) Closed() bool {
	return m.closed
}
