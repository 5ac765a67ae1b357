// Package console provides the local character I/O capability of the
// endpoint. Backends are interchangeable and selected at startup through
// configuration.
package console

// Console is the interface that wraps the two primitives the dispatch
// loop needs: a non-blocking key check and a character write.
type Console interface {
	// ReadKey returns a pressed key if one is pending. It never blocks.
	ReadKey() (byte, bool)

	// WriteChar writes one character to the local display.
	WriteChar(c byte) error

	// Close releases the console and restores the terminal.
	Close() error
}

// RegionSwitcher is implemented by backends that move remote display
// output onto a separate display region, bracketing each burst with the
// region-switch escape sequences.
type RegionSwitcher interface {
	EnterDisplay() error
	LeaveDisplay() error
}
