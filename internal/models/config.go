package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// CloudStorageConfig selects where Parquet telemetry archives land when the
// output destination is not local.
type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

// Config holds the operational settings for the display daemon. The API
// credential is deliberately not here: it lives in the provisioned device
// config file (see DeviceConfigStore) so the provisioning flow can rewrite it
// without touching this file.
type Config struct {
	OriginLat      float64 `mapstructure:"origin_latitude"`
	OriginLng      float64 `mapstructure:"origin_longitude"`
	DestinationLat float64 `mapstructure:"destination_latitude"`
	DestinationLng float64 `mapstructure:"destination_longitude"`

	PollInterval    time.Duration `mapstructure:"poll_interval"`
	TwinkleInterval time.Duration `mapstructure:"twinkle_interval"`
	FrameInterval   time.Duration `mapstructure:"frame_interval"`

	LEDCount     int    `mapstructure:"led_count"`
	ByteOrder    string `mapstructure:"byte_order"` // "rgb" or "grb"
	ConsoleStrip bool   `mapstructure:"console_strip"`

	DirectionsURL    string `mapstructure:"directions_url"`
	Simulate         bool   `mapstructure:"simulate"`
	DeviceConfigPath string `mapstructure:"device_config_path"`

	ProvisionPort     int           `mapstructure:"provision_port"`
	ResetMarkerPath   string        `mapstructure:"reset_marker_path"`
	DoubleResetWindow time.Duration `mapstructure:"double_reset_window"`

	OutputFormat      string             `mapstructure:"output_format"` // "", "console", "json", "parquet"
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"` // "local" or a cloud provider
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Route builds the watched route from the four coordinate settings.
func (cfg *Config) Route() Route {
	return Route{
		Origin:      Coordinates{Lat: cfg.OriginLat, Lng: cfg.OriginLng},
		Destination: Coordinates{Lat: cfg.DestinationLat, Lng: cfg.DestinationLng},
	}
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("poll_interval", "5m")
	viper.SetDefault("twinkle_interval", "30s")
	viper.SetDefault("frame_interval", "50ms")
	viper.SetDefault("led_count", 7)
	viper.SetDefault("byte_order", "grb")
	viper.SetDefault("directions_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	viper.SetDefault("device_config_path", "bridge_config.json")
	viper.SetDefault("provision_port", 8266)
	viper.SetDefault("reset_marker_path", "bridge_reset.marker")
	viper.SetDefault("double_reset_window", "10s")
	viper.SetDefault("output_destination", "local")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
