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
	"github.com/scheerer/ir-screen-lights/backlight"
	"github.com/scheerer/ir-screen-lights/internal/logging"
	"github.com/scheerer/ir-screen-lights/internal/screen"
	"github.com/scheerer/ir-screen-lights/lights"
	"github.com/scheerer/ir-screen-lights/lights/broadlink"
)

var logger = logging.New("main")

type hubConfig struct {
	BroadlinkAPIURL  string        `env:"BROADLINK_API_URL"`
	DeviceConfigPath string        `env:"DEVICE_CONFIG_PATH" envDefault:"config/remote_code.json"`
	DeviceName       string        `env:"DEVICE_NAME" envDefault:"monitor_backlight"`
	DispatchTimeout  time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"5s"`
}

func main() {
	defer logger.Sync()

	_ = godotenv.Load()

	var config backlight.Config
	if err := env.Parse(&config); err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	var hub hubConfig
	if err := env.Parse(&hub); err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	if config.PollInterval <= 0 {
		logger.Fatalf("POLL_INTERVAL must be positive, got %v", config.PollInterval)
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

	logger.With(zap.Any("config", config), zap.String("device", hub.DeviceName),
		zap.Int("paletteSize", palette.Len())).Info("Starting backlight sync")
	logger.Info("Adjust POLL_INTERVAL to change how often the screen is sampled.")
	logger.Info("Adjust PIXEL_GRID_SIZE to trade accuracy for speed. 1 visits every pixel.")
	logger.Info("Adjust SCREEN_NUMBER to target a different screen. 0 is the primary screen.")
	logger.Info("Set RUN_DURATION to stop automatically after a fixed time.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())

	controller := backlight.New(config, screen.Display{Num: config.ScreenNumber}, palette, sender)

	done := make(chan struct{})
	go func() {
		controller.Run(ctx)
		close(done)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdown:
		logger.Info("Shutting down")
		cancel()
		<-done
	case <-done:
		// RUN_DURATION elapsed
		cancel()
	}
}
