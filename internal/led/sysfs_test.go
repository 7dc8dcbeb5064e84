package led

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/light-controller/internal/logic"
)

func newTestLED(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "rgb:status")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"multi_intensity", "brightness"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root, dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSysfsDriverSet(t *testing.T) {
	root, dir := newTestLED(t)
	d, err := NewSysfsDriver(root, "rgb:status")
	if err != nil {
		t.Fatalf("NewSysfsDriver: %v", err)
	}

	if err := d.Set(logic.ColourOrange, 64); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "multi_intensity")); got != "255 96 0\n" {
		t.Errorf("multi_intensity: got %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "brightness")); got != "64\n" {
		t.Errorf("brightness: got %q", got)
	}
}

func TestSysfsDriverOffZeroesBrightness(t *testing.T) {
	root, dir := newTestLED(t)
	d, err := NewSysfsDriver(root, "rgb:status")
	if err != nil {
		t.Fatalf("NewSysfsDriver: %v", err)
	}

	if err := d.Set(logic.ColourOff, 64); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "brightness")); got != "0\n" {
		t.Errorf("brightness: got %q, want 0", got)
	}
}

func TestSysfsDriverClose(t *testing.T) {
	root, dir := newTestLED(t)
	d, err := NewSysfsDriver(root, "rgb:status")
	if err != nil {
		t.Fatalf("NewSysfsDriver: %v", err)
	}
	d.Set(logic.ColourWhite, 255)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "brightness")); got != "0\n" {
		t.Errorf("brightness after close: got %q", got)
	}
}

func TestSysfsDriverMissing(t *testing.T) {
	if _, err := NewSysfsDriver(t.TempDir(), "nope"); err == nil {
		t.Error("expected error for missing LED")
	}
}

func TestSysfsDriverWriteError(t *testing.T) {
	root, dir := newTestLED(t)
	d, err := NewSysfsDriver(root, "rgb:status")
	if err != nil {
		t.Fatalf("NewSysfsDriver: %v", err)
	}

	// Replace brightness with a directory so the write fails.
	os.Remove(filepath.Join(dir, "brightness"))
	os.Mkdir(filepath.Join(dir, "brightness"), 0755)

	if err := d.Set(logic.ColourRed, 10); err == nil {
		t.Error("expected write error")
	}
}

func TestFakeDriver(t *testing.T) {
	f := NewFakeDriver()
	if _, ok := f.Last(); ok {
		t.Error("expected no writes")
	}

	f.Set(logic.ColourRed, 10)
	f.Set(logic.ColourGreen, 20)

	w, ok := f.Last()
	if !ok || w.Colour != logic.ColourGreen || w.Level != 20 {
		t.Errorf("unexpected last write: %+v", w)
	}
	if n := len(f.Writes()); n != 2 {
		t.Errorf("expected 2 writes, got %d", n)
	}

	f.FailWith(os.ErrPermission)
	if err := f.Set(logic.ColourBlue, 1); err == nil {
		t.Error("expected error")
	}
	if n := len(f.Writes()); n != 2 {
		t.Errorf("failed write should not be recorded, got %d", n)
	}
}
