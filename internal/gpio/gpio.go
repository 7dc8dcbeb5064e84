// Package gpio provides the push-button input with hardware abstraction.
// The real implementation uses the Linux GPIO character device with edge
// interrupts. The fake implementation allows testing without hardware.
package gpio

// EdgeHandler is called for every edge on the button line with the new
// logical level (true = pressed). It runs in the event delivery context and
// must not block, log or take locks.
type EdgeHandler func(active bool)

// Button is the push-button input line.
type Button interface {
	// Read returns the current logical level (true = pressed).
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default line (BCM numbering)
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
