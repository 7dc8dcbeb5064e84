package gpio

import "sync"

// FakeButton is a test double that lets tests generate edges.
type FakeButton struct {
	mu      sync.Mutex
	level   bool
	handler EdgeHandler

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButton creates a released FakeButton that reports edges to handler.
func NewFakeButton(handler EdgeHandler) *FakeButton {
	return &FakeButton{handler: handler}
}

// SetHandler replaces the edge handler.
func (f *FakeButton) SetHandler(handler EdgeHandler) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

// Edge sets the level and delivers an edge, as the interrupt would.
func (f *FakeButton) Edge(active bool) {
	f.mu.Lock()
	f.level = active
	h := f.handler
	f.mu.Unlock()

	if h != nil {
		h(active)
	}
}

// Press delivers a rising edge.
func (f *FakeButton) Press() { f.Edge(true) }

// Release delivers a falling edge.
func (f *FakeButton) Release() { f.Edge(false) }

// Read returns the last level set by Edge.
func (f *FakeButton) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}
