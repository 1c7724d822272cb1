package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/scheerer/ir-screen-lights/internal/audio"
	"github.com/scheerer/ir-screen-lights/internal/logging"
	"github.com/scheerer/ir-screen-lights/internal/screen"
	"github.com/scheerer/ir-screen-lights/lights"
	"github.com/scheerer/ir-screen-lights/lights/broadlink"
	"github.com/scheerer/ir-screen-lights/spike"
)

var logger = logging.New("main")

type hubConfig struct {
	BroadlinkAPIURL  string        `env:"BROADLINK_API_URL"`
	DeviceConfigPath string        `env:"DEVICE_CONFIG_PATH" envDefault:"config/remote_code.json"`
	DeviceName       string        `env:"DEVICE_NAME" envDefault:"bottom_light"`
	DispatchTimeout  time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"5s"`
}

func main() {
	defer logger.Sync()

	_ = godotenv.Load()

	var config spike.Config
	if err := env.Parse(&config); err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	var hub hubConfig
	if err := env.Parse(&hub); err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	if config.SpikeThreshold <= 0 {
		logger.Fatalf("SPIKE_THRESHOLD must be positive, got %v", config.SpikeThreshold)
	}
	if config.SampleRate <= 0 || config.ChunkSize <= 0 || config.Channels <= 0 {
		logger.Fatal("SAMPLE_RATE, CHUNK_SIZE and CHANNELS must all be positive")
	}
	if hub.BroadlinkAPIURL == "" {
		logger.Fatal("BROADLINK_API_URL is required")
	}
	if n := screen.NumDisplays(); config.ScreenNumber < 0 || config.ScreenNumber >= n {
		logger.Fatalf("SCREEN_NUMBER %d is out of range, %d display(s) attached", config.ScreenNumber, n)
	}

	palette, packets, err := lights.LoadDevice(hub.DeviceConfigPath, hub.DeviceName)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to load device config")
	}

	sender, err := broadlink.NewSender(broadlink.Config{
		BaseURL: hub.BroadlinkAPIURL,
		Packets: packets,
		Timeout: hub.DispatchTimeout,
	})
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to create broadlink sender")
	}

	mic, err := audio.OpenMic(config.SampleRate, config.ChunkSize, config.Channels)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to open microphone")
	}

	controller, err := spike.New(config, mic, screen.Display{Num: config.ScreenNumber}, palette, sender)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to create spike controller")
	}

	logger.With(zap.Any("config", config), zap.String("device", hub.DeviceName),
		zap.Int("paletteSize", palette.Len())).Info("Starting spike lights")
	logger.Info("Adjust SPIKE_THRESHOLD to match your room. Lower values trigger on quieter sounds.")
	logger.Info("Adjust SPIKE_COOLDOWN to limit how often the lights can fire.")
	logger.Info("Adjust SCREEN_NUMBER to target a different screen. 0 is the primary screen.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		controller.Run(ctx)
		close(done)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Info("Shutting down")
	cancel()
	<-done
	if err := mic.Close(); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to close microphone")
	}
}
