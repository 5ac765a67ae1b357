package session

import (
	"bytes"
	"testing"
)

func TestKeyBufferDrain(t *testing.T) {
	b := NewKeyBuffer(8)
	for _, c := range []byte("abc") {
		b.Put(c)
	}

	if got := b.Drain(); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Drain = %q", got)
	}
	if got := b.Drain(); len(got) != 0 {
		t.Errorf("second Drain = %q, want empty", got)
	}
}

func TestKeyBufferOverflow(t *testing.T) {
	b := NewKeyBuffer(3)
	for _, c := range []byte("12345") {
		b.Put(c)
	}

	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	if got := b.Drain(); !bytes.Equal(got, []byte("345")) {
		t.Errorf("Drain = %q, want %q", got, "345")
	}
}

func TestKeyBufferDefaultSize(t *testing.T) {
	b := NewKeyBuffer(0)
	for i := 0; i < DefaultKeyBufferSize+5; i++ {
		b.Put(byte('a' + i%26))
	}
	if b.Len() != DefaultKeyBufferSize {
		t.Errorf("Len = %d, want %d", b.Len(), DefaultKeyBufferSize)
	}
}

func TestKeyBufferDrainIsCopy(t *testing.T) {
	b := NewKeyBuffer(4)
	b.Put('x')

	got := b.Drain()
	b.Put('y')
	if !bytes.Equal(got, []byte("x")) {
		t.Errorf("drained slice changed: %q", got)
	}
}
