package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all evaluator settings, populated from environment variables.
type Config struct {
	MetarBaseURL        string
	FetchTimeout        time.Duration
	UserAgent           string
	SaturationTablePath string
	StaleAfter          time.Duration
	LogLevel            string
	LogFormat           string

	// Optional Kafka result sink.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	// MetricsTextfile, when set, receives the run's metrics at exit.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is applied first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	staleAfter, err := parsePositiveDuration("STALE_AFTER", "2h")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KAFKA_ENABLED %q: must be a boolean", v)
		}
		kafkaEnabled = b
	}

	cfg := &Config{
		MetarBaseURL:        strings.TrimRight(envOrDefault("METAR_BASE_URL", "https://tgftp.nws.noaa.gov/data/observations/metar/stations"), "/"),
		FetchTimeout:        fetchTimeout,
		UserAgent:           envOrDefault("USER_AGENT", "metar-economizer/1.0"),
		SaturationTablePath: envOrDefault("SATURATION_TABLE_PATH", "humidityratio.csv"),
		StaleAfter:          staleAfter,
		LogLevel:            envOrDefault("LOG_LEVEL", "warn"),
		LogFormat:           envOrDefault("LOG_FORMAT", "text"),
		KafkaBrokers:        brokers,
		KafkaTopic:          envOrDefault("KAFKA_TOPIC", "economizer-evaluations"),
		KafkaEnabled:        kafkaEnabled,
		MetricsTextfile:     os.Getenv("METRICS_TEXTFILE"),
	}

	if cfg.MetarBaseURL == "" {
		return nil, errors.New("METAR_BASE_URL is required")
	}
	if cfg.SaturationTablePath == "" {
		return nil, errors.New("SATURATION_TABLE_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is set but KAFKA_BROKERS is not")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when the Kafka sink is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping blanks.
func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
