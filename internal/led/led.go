// Package led drives the RGB status LED.
package led

import "github.com/sweeney/light-controller/internal/logic"

// Driver writes colours to the status LED. Only the UI worker calls Set.
type Driver interface {
	// Set shows colour at the given brightness level.
	Set(colour logic.RGBColour, level uint8) error

	// Close turns the LED off and releases it.
	Close() error
}
