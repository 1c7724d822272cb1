// Package backlight steers the lights toward the dominant screen color on a
// fixed polling interval.
package backlight

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/ir-screen-lights/internal/logging"
	"github.com/scheerer/ir-screen-lights/internal/screen"
	"github.com/scheerer/ir-screen-lights/lights"
)

var logger = logging.New("backlight")

type Config struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	// RunDuration stops the loop after the given time. Zero runs until the
	// context is cancelled.
	RunDuration   time.Duration `env:"RUN_DURATION" envDefault:"0"`
	ScreenNumber  int           `env:"SCREEN_NUMBER" envDefault:"0"`
	PixelGridSize int           `env:"PIXEL_GRID_SIZE" envDefault:"4"`
	SaveCaptures  bool          `env:"SAVE_CAPTURES" envDefault:"false"`
	CaptureDir    string        `env:"CAPTURE_DIR" envDefault:"screen_captures"`
}

// Capturer grabs a still frame of the configured display.
type Capturer interface {
	Capture() (*image.RGBA, error)
}

// Controller polls the screen and dispatches a command only when the mapped
// command differs from the last one successfully sent. A failed dispatch
// leaves the bookkeeping untouched so the next tick retries the same target.
type Controller struct {
	config  Config
	frames  Capturer
	palette *lights.Palette
	sender  lights.Sender

	last     lights.CommandID
	haveLast bool

	lastWarning time.Time
}

func New(config Config, frames Capturer, palette *lights.Palette, sender lights.Sender) *Controller {
	return &Controller{
		config:  config,
		frames:  frames,
		palette: palette,
		sender:  sender,
	}
}

// Run polls until ctx is cancelled or RunDuration elapses. The stop signal is
// checked between iterations only; an iteration in flight always completes.
func (c *Controller) Run(ctx context.Context) {
	if c.config.RunDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RunDuration)
		defer cancel()
	}

	logger.Infow("Backlight sync started", "pollInterval", c.config.PollInterval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Backlight sync stopped")
			return
		default:
		}

		startTime := time.Now()
		c.runOnce(ctx)
		totalDuration := time.Since(startTime)

		if totalDuration > c.config.PollInterval {
			if time.Since(c.lastWarning) > 10*time.Second {
				logger.With(zap.Stringer("totalDuration", totalDuration)).
					Warn("Cannot keep up with POLL_INTERVAL. Consider increasing PIXEL_GRID_SIZE or increasing POLL_INTERVAL.")
				c.lastWarning = time.Now()
			}
		} else {
			time.Sleep(c.config.PollInterval - totalDuration)
		}
	}
}

// runOnce performs a single capture → extract → map → dispatch iteration.
func (c *Controller) runOnce(ctx context.Context) {
	img, err := c.frames.Capture()
	if err != nil {
		// transient: the next tick is the retry
		logger.With(zap.Error(err)).Error("Failed to capture screen")
		return
	}

	dominant, err := screen.DominantColor(img, c.config.PixelGridSize)
	if err != nil {
		logger.With(zap.Error(err)).Error("Failed to extract dominant color")
		return
	}

	command := c.palette.Nearest(lights.Color{Red: dominant.R, Green: dominant.G, Blue: dominant.B})
	if c.haveLast && command == c.last {
		logger.Debugw("Dominant color unchanged, skipping dispatch", "command", command)
		return
	}

	if err := c.sender.Send(ctx, command); err != nil {
		logger.With(zap.Error(err)).Errorw("Dispatch failed", "command", command)
		return
	}
	c.last = command
	c.haveLast = true
	logger.Infow("Backlight dispatched", "command", command, "color", dominant)

	if c.config.SaveCaptures {
		go func() {
			if err := screen.SaveCapture(c.config.CaptureDir, c.config.ScreenNumber, img); err != nil {
				logger.With(zap.Error(err)).Warn("Failed to save debug capture")
			}
		}()
	}
}
