package led

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweeney/light-controller/internal/logic"
)

// DefaultSysfsRoot is where the kernel exposes LED class devices.
const DefaultSysfsRoot = "/sys/class/leds"

// SysfsDriver drives a Linux multicolor LED class device, which takes the
// colour as per-channel intensities and a separate overall brightness.
type SysfsDriver struct {
	dir string
}

// NewSysfsDriver opens the multicolor LED called name under root.
func NewSysfsDriver(root, name string) (*SysfsDriver, error) {
	dir := filepath.Join(root, name)
	if _, err := os.Stat(filepath.Join(dir, "multi_intensity")); err != nil {
		return nil, fmt.Errorf("LED %q is not a multicolor LED: %w", name, err)
	}
	return &SysfsDriver{dir: dir}, nil
}

// Set writes the channel intensities then the brightness.
func (d *SysfsDriver) Set(colour logic.RGBColour, level uint8) error {
	intensity := fmt.Sprintf("%d %d %d\n", colour.Red, colour.Green, colour.Blue)
	if err := os.WriteFile(filepath.Join(d.dir, "multi_intensity"), []byte(intensity), 0644); err != nil {
		return fmt.Errorf("set LED intensity: %w", err)
	}

	if colour == logic.ColourOff {
		level = 0
	}
	if err := os.WriteFile(filepath.Join(d.dir, "brightness"), []byte(fmt.Sprintf("%d\n", level)), 0644); err != nil {
		return fmt.Errorf("set LED brightness: %w", err)
	}
	return nil
}

// Close switches the LED off.
func (d *SysfsDriver) Close() error {
	if err := os.WriteFile(filepath.Join(d.dir, "brightness"), []byte("0\n"), 0644); err != nil {
		return fmt.Errorf("switch LED off: %w", err)
	}
	return nil
}
