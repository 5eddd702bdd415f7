package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration
	BatchConcurrency   int

	// Engine configuration.
	CurveCatalogPath string
	PremiumLoading   float64
	RiskLoadMethod   string
	RiskQuantile     float64
	ExceedanceMethod string

	// Object storage (S3 or Cloudflare R2) for result documents.
	ResultEndpoint     string
	ResultBucket       string
	ResultRegion       string
	ResultsDir         string
	ResultStoreEnabled bool

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	concurrency, err := parsePositiveInt("BATCH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	loading, err := parseFloat("PREMIUM_LOADING", 0.15)
	if err != nil {
		return nil, err
	}
	if loading < 0 {
		return nil, errors.New("invalid PREMIUM_LOADING: must be >= 0")
	}

	quantile, err := parseFloat("RISK_QUANTILE", 0.95)
	if err != nil {
		return nil, err
	}
	quantile = math.Min(0.999, math.Max(0.5, quantile))

	riskLoad := strings.ToLower(sharedcfg.EnvOrDefault("RISK_LOAD_METHOD", "none"))
	switch riskLoad {
	case "none", "var", "tvar", "stdev":
	default:
		return nil, fmt.Errorf("invalid RISK_LOAD_METHOD %q: want none, var, tvar or stdev", riskLoad)
	}

	exceedance := strings.ToLower(sharedcfg.EnvOrDefault("EXCEEDANCE_METHOD", "step"))
	switch exceedance {
	case "step", "weibull", "hazen", "gringorten":
	default:
		return nil, fmt.Errorf("invalid EXCEEDANCE_METHOD %q: want step, weibull, hazen or gringorten", exceedance)
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	resultEndpoint := os.Getenv("R2_ENDPOINT_URL")
	resultStoreEnabled := resultEndpoint != ""
	if v := os.Getenv("RESULT_STORE_ENABLED"); v != "" {
		resultStoreEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "impact-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-risk-engine"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		BatchConcurrency:   concurrency,

		CurveCatalogPath: os.Getenv("CURVE_CATALOG_PATH"),
		PremiumLoading:   loading,
		RiskLoadMethod:   riskLoad,
		RiskQuantile:     quantile,
		ExceedanceMethod: exceedance,

		ResultEndpoint:     resultEndpoint,
		ResultBucket:       sharedcfg.EnvOrDefault("R2_BUCKET_NAME", "climarisk-og"),
		ResultRegion:       sharedcfg.EnvOrDefault("R2_REGION", "auto"),
		ResultsDir:         sharedcfg.EnvOrDefault("RESULTS_DIR", "results"),
		ResultStoreEnabled: resultStoreEnabled,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", key, s)
	}
	return v, nil
}
