package screen

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kbinani/screenshot"
	"github.com/scheerer/ir-screen-lights/internal/logging"
)

var logger = logging.New("screen")

// ErrEmptyFrame indicates a capture with no pixels. Callers treat it as a
// transient capture failure.
var ErrEmptyFrame = errors.New("captured frame has no pixels")

// NumDisplays reports how many displays are attached.
func NumDisplays() int {
	return screenshot.NumActiveDisplays()
}

// Capture grabs a still frame of the given display.
func Capture(displayNum int) (*image.RGBA, error) {
	img, err := screenshot.CaptureDisplay(displayNum)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", displayNum, err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	return img, nil
}

// Display is a capture handle for one display, bound at startup.
type Display struct {
	Num int
}

func (d Display) Capture() (*image.RGBA, error) {
	return Capture(d.Num)
}

// SaveCapture writes a frame to dir as PNG. Debugging aid only; callers run
// it off the decision path and only log failures.
func SaveCapture(dir string, displayNum int, img *image.RGBA) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}
	name := fmt.Sprintf("screen_%d_%s_%s.png",
		displayNum, time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	logger.Debugw("saved debug capture", "file", name)
	return nil
}
