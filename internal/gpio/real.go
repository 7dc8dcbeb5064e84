//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton reads the button from actual hardware using the Linux GPIO character device.
type RealButton struct {
	line    *gpiocdev.Line
	handler EdgeHandler
}

// NewRealButton requests the button line with edge detection on both edges.
// With activeLow the line is pulled up and a low level reads as pressed.
func NewRealButton(chip string, pin int, activeLow bool, handler EdgeHandler) (*RealButton, error) {
	b := &RealButton{handler: handler}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.onEvent),
		gpiocdev.WithConsumer("light-controller"),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	} else {
		opts = append(opts, gpiocdev.WithPullDown)
	}

	line, err := gpiocdev.RequestLine(chip, pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d on %s: %w", pin, chip, err)
	}
	b.line = line
	return b, nil
}

// onEvent runs on the gpiocdev watcher goroutine for every edge.
// Edges are reported in logical terms, so a rising edge is a press.
func (b *RealButton) onEvent(evt gpiocdev.LineEvent) {
	if b.handler == nil {
		return
	}
	b.handler(evt.Type == gpiocdev.LineEventRisingEdge)
}

// Read returns the logical level of the button.
func (b *RealButton) Read() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 1, nil
}

// Close releases the line. It is left as an input with pull-down so the pin
// is in the same state as at boot.
func (b *RealButton) Close() error {
	var errs []error

	if b.line != nil {
		if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
