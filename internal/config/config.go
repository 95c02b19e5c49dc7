package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Map surface configuration.
	MapAnchor          string
	MapTileURL         string
	MapTileAttribution string
	ResizeDelay        time.Duration
	RowCap             int

	// Optional YAML file overriding the built-in layer catalog.
	LayerCatalogPath string

	// Kafka render pipeline (off unless KAFKA_ENABLED=true).
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

const (
	defaultTileURL         = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultTileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	maxRowCap              = 50000
	maxBatchSize           = 1000
)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	resizeDelay, err := parseNonNegativeDuration("RESIZE_DELAY", "100ms")
	if err != nil {
		return nil, err
	}

	rowCap, err := parseBoundedInt("ROW_CAP", 10000, maxRowCap)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBoundedInt("BATCH_SIZE", 50, maxBatchSize)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapAnchor:          EnvOrDefault("MAP_ANCHOR", "leaflet-map"),
		MapTileURL:         EnvOrDefault("MAP_TILE_URL", defaultTileURL),
		MapTileAttribution: EnvOrDefault("MAP_TILE_ATTRIBUTION", defaultTileAttribution),
		ResizeDelay:        resizeDelay,
		RowCap:             rowCap,

		LayerCatalogPath: os.Getenv("LAYER_CATALOG_PATH"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       ParseBrokers(EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   EnvOrDefault("KAFKA_SOURCE_TOPIC", "search-results"),
		KafkaSinkTopic:     EnvOrDefault("KAFKA_SINK_TOPIC", "layer-snapshots"),
		KafkaGroupID:       EnvOrDefault("KAFKA_GROUP_ID", "search-layer-map"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if strings.TrimSpace(cfg.MapAnchor) == "" {
		return nil, errors.New("MAP_ANCHOR is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// EnvOrDefault returns the value of key, or fallback when unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseNonNegativeDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(EnvOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative duration", key)
	}
	return d, nil
}

func parseBoundedInt(key string, fallback, maxValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxValue {
		return 0, fmt.Errorf("invalid %s: must be between 1 and %d", key, maxValue)
	}
	return n, nil
}
