package led

import (
	"sync"

	"github.com/sweeney/light-controller/internal/logic"
)

// Write is one recorded Set call.
type Write struct {
	Colour logic.RGBColour
	Level  uint8
}

// FakeDriver records LED writes for test assertions.
type FakeDriver struct {
	mu     sync.Mutex
	writes []Write

	// SetError, if set, will be returned by Set (and the write not recorded).
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the write.
func (f *FakeDriver) Set(colour logic.RGBColour, level uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.writes = append(f.writes, Write{Colour: colour, Level: level})
	return nil
}

// FailWith makes subsequent Set calls return err (nil to recover).
func (f *FakeDriver) FailWith(err error) {
	f.mu.Lock()
	f.SetError = err
	f.mu.Unlock()
}

// Writes returns a copy of the recorded writes.
func (f *FakeDriver) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Write, len(f.writes))
	copy(out, f.writes)
	return out
}

// Last returns the most recent write.
func (f *FakeDriver) Last() (Write, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return Write{}, false
	}
	return f.writes[len(f.writes)-1], true
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
