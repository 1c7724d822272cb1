// Package spike reacts to sudden loudness spikes by flashing the lights with
// the most contrasting color currently on screen.
package spike

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/ir-screen-lights/internal/audio"
	"github.com/scheerer/ir-screen-lights/internal/logging"
	"github.com/scheerer/ir-screen-lights/internal/screen"
	"github.com/scheerer/ir-screen-lights/lights"
)

var logger = logging.New("spike")

const captureBackoff = 250 * time.Millisecond

type Config struct {
	SampleRate     int           `env:"SAMPLE_RATE" envDefault:"44100"`
	ChunkSize      int           `env:"CHUNK_SIZE" envDefault:"1024"`
	Channels       int           `env:"CHANNELS" envDefault:"1"`
	SpikeThreshold float64       `env:"SPIKE_THRESHOLD" envDefault:"2"`
	Cooldown       time.Duration `env:"SPIKE_COOLDOWN" envDefault:"1s"`
	ScreenNumber   int           `env:"SCREEN_NUMBER" envDefault:"0"`
	PixelGridSize  int           `env:"PIXEL_GRID_SIZE" envDefault:"4"`
	SaveCaptures   bool          `env:"SAVE_CAPTURES" envDefault:"false"`
	CaptureDir     string        `env:"CAPTURE_DIR" envDefault:"screen_captures"`
}

// ChunkSource yields audio chunks; Next blocks until one is available.
type ChunkSource interface {
	Next(ctx context.Context) (audio.Chunk, error)
}

// Capturer grabs a still frame of the configured display.
type Capturer interface {
	Capture() (*image.RGBA, error)
}

// Controller runs the audio loop: every chunk feeds the detector, and each
// spike outside the cooldown window triggers one capture-and-dispatch. The
// cooldown is checked lazily on the spike, not by a timer.
type Controller struct {
	config   Config
	source   ChunkSource
	frames   Capturer
	detector *audio.Detector
	palette  *lights.Palette
	sender   lights.Sender

	lastDispatch time.Time
	now          func() time.Time
}

func New(config Config, source ChunkSource, frames Capturer, palette *lights.Palette, sender lights.Sender) (*Controller, error) {
	detector, err := audio.NewDetector(config.SpikeThreshold)
	if err != nil {
		return nil, err
	}
	if palette.Len() == 0 {
		return nil, lights.ErrEmptyPalette
	}
	return &Controller{
		config:   config,
		source:   source,
		frames:   frames,
		detector: detector,
		palette:  palette,
		sender:   sender,
		now:      time.Now,
	}, nil
}

// Run consumes chunks until ctx is cancelled. A dispatch in flight is always
// allowed to finish; the stop signal is only honored between iterations.
func (c *Controller) Run(ctx context.Context) {
	logger.Info("Listening for spikes")
	for {
		if ctx.Err() != nil {
			logger.Info("Spike loop stopped")
			return
		}
		chunk, err := c.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Spike loop stopped")
				return
			}
			logger.With(zap.Error(err)).Error("Failed to read audio chunk")
			time.Sleep(captureBackoff)
			continue
		}
		if !c.detector.Observe(chunk) {
			continue
		}
		c.handleSpike(ctx)
	}
}

func (c *Controller) handleSpike(ctx context.Context) {
	if !c.lastDispatch.IsZero() && c.now().Sub(c.lastDispatch) < c.config.Cooldown {
		logger.Debugw("Spike dropped during cooldown",
			"sinceLastDispatch", c.now().Sub(c.lastDispatch))
		return
	}

	img, err := c.frames.Capture()
	if err != nil {
		// one backoff retry, then give up until the next spike
		logger.With(zap.Error(err)).Warn("Failed to capture screen, retrying")
		time.Sleep(captureBackoff)
		if img, err = c.frames.Capture(); err != nil {
			logger.With(zap.Error(err)).Error("Failed to capture screen, dropping spike")
			return
		}
	}

	contrast, err := screen.HighestContrastColor(img, c.config.PixelGridSize)
	if err != nil {
		logger.With(zap.Error(err)).Error("Failed to extract contrast color, dropping spike")
		return
	}

	command := c.palette.Nearest(lights.Color{Red: contrast.R, Green: contrast.G, Blue: contrast.B})

	err = c.sender.Send(ctx, command)
	// record the attempt either way so a flapping hub is still rate-limited
	c.lastDispatch = c.now()
	if err != nil {
		logger.With(zap.Error(err)).Errorw("Dispatch failed", "command", command)
	} else {
		logger.Infow("Spike dispatched",
			"command", command,
			"color", contrast,
			"baseline", c.detector.Baseline())
	}

	if c.config.SaveCaptures {
		go func() {
			if err := screen.SaveCapture(c.config.CaptureDir, c.config.ScreenNumber, img); err != nil {
				logger.With(zap.Error(err)).Warn("Failed to save debug capture")
			}
		}()
	}
}
