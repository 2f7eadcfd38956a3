package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/witnessmenow/bridge-traffic-display/internal/display"
	"github.com/witnessmenow/bridge-traffic-display/internal/models"
	"github.com/witnessmenow/bridge-traffic-display/internal/monitor"
	"github.com/witnessmenow/bridge-traffic-display/internal/provision"
	"github.com/witnessmenow/bridge-traffic-display/internal/repositories"
	pgrepo "github.com/witnessmenow/bridge-traffic-display/internal/repositories/postgres"
	"github.com/witnessmenow/bridge-traffic-display/internal/telemetry"
	"github.com/witnessmenow/bridge-traffic-display/internal/traffic"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bridgetraffic",
	Short: "Drives an LED strip showing live travel time for a fixed route",
	Long: `bridgetraffic polls a traffic-routing API for travel time on a fixed
route and renders the result as a color-coded animation on an addressable LED
strip: green for free flow, yellow for light congestion, red for heavy.
Between polls the strip twinkles around the current color. A local portal
serves setup, status and a live strip preview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Duration("poll-interval", 5*time.Minute, "How often to poll the routing API")
	rootCmd.Flags().Duration("twinkle-interval", 30*time.Second, "How often to twinkle between polls")
	rootCmd.Flags().Duration("frame-interval", 50*time.Millisecond, "Animation frame pacing")
	rootCmd.Flags().Int("led-count", 7, "Number of pixels on the strip")
	rootCmd.Flags().String("byte-order", "grb", "Strip channel order (rgb|grb)")
	rootCmd.Flags().Bool("console-strip", false, "Mirror the strip on the terminal")
	rootCmd.Flags().Bool("simulate", false, "Generate travel times instead of calling the API")
	rootCmd.Flags().Int("provision-port", 8266, "Port for the setup portal")
	rootCmd.Flags().String("output-format", "", "Telemetry output (console|json|parquet)")
	rootCmd.Flags().Bool("kafka-enabled", false, "Publish telemetry to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("postgres-dsn", "", "Postgres DSN for poll history (empty disables)")

	viper.BindPFlags(rootCmd.Flags())
}

func run(cfg *models.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := models.NewDeviceConfigStore(cfg.DeviceConfigPath)

	order, err := display.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return err
	}

	hub := provision.NewHub(logger)
	go hub.Run(ctx)

	devices := []display.Device{hub}
	if cfg.ConsoleStrip {
		devices = append(devices, display.NewConsoleDevice(os.Stdout, order))
	}
	strip := display.NewStrip(cfg.LEDCount, order, devices...)

	var provider traffic.Provider
	if cfg.Simulate {
		provider = traffic.NewSimulatedProvider()
		logger.Info("using simulated traffic provider")
	} else {
		provider = traffic.NewDirectionsClient(cfg.DirectionsURL, store)
	}

	sink, err := telemetry.ForConfig(cfg)
	if err != nil {
		return fmt.Errorf("configuring telemetry: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logger.Warn("telemetry close failed", "error", cerr)
		}
	}()

	var repo repositories.SampleRepository
	if cfg.PostgresDSN != "" {
		pool, perr := pgxpool.New(ctx, cfg.PostgresDSN)
		if perr != nil {
			return fmt.Errorf("connecting to postgres: %w", perr)
		}
		defer pool.Close()

		pg := pgrepo.NewSampleRepository(pool)
		if serr := pg.EnsureSchema(ctx); serr != nil {
			return fmt.Errorf("preparing history schema: %w", serr)
		}
		repo = pg
	}

	mon := monitor.New(monitor.Config{
		Route:           cfg.Route(),
		PollInterval:    cfg.PollInterval,
		TwinkleInterval: cfg.TwinkleInterval,
		FrameInterval:   cfg.FrameInterval,
	}, logger, provider, strip, sink, repo)

	forced, err := provision.DetectDoubleReset(cfg.ResetMarkerPath, cfg.DoubleResetWindow, time.Now())
	if err != nil {
		logger.Warn("double reset detection failed", "error", err)
	}
	if forced {
		logger.Info("double reset detected, entering setup mode",
			"portal", fmt.Sprintf("http://localhost:%d/", cfg.ProvisionPort))
		mon.Pause(true)
	}
	time.AfterFunc(cfg.DoubleResetWindow, func() {
		if cerr := provision.ClearMarker(cfg.ResetMarkerPath); cerr != nil {
			logger.Warn("clearing reset marker failed", "error", cerr)
		}
	})

	server := provision.NewServer(logger, store, mon, repo, hub, func() {
		mon.Pause(false)
		mon.PollNow()
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(ctx, cfg.ProvisionPort)
	}()

	if err := mon.Run(ctx); err != nil {
		return err
	}
	return <-errCh
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
