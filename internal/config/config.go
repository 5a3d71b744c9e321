package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go-shoe-studio/internal/geometry"
)

// Backend names accepted by GENAI_BACKEND and STORAGE_BACKEND.
const (
	GenAIGemini = "gemini"
	GenAIMock   = "mock"

	StorageHTTP  = "http"
	StorageAzure = "azure"
	StorageLocal = "local"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	TransformTimeout   time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	// Remote generative-image model
	GenAIBackend  string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Static template assets
	StorageBackend        string
	AssetBaseURL          string
	LocalAssetDir         string
	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string
	CatalogPath           string

	HistoryDBPath string
	SketchArea    geometry.Rect
	SwatchSize    int

	// Idle sessions and moodboards are dropped after SessionTTL.
	SessionTTL time.Duration
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	sketch, err := parseRectOrDefault("SKETCH_AREA", geometry.DefaultSketchArea)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                  getEnvOrDefault("PORT", "8080"),
		RequestTimeout:        parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		TransformTimeout:      parseDurationOrDefault("TRANSFORM_TIMEOUT", 90*time.Second),
		ImageFetchTimeout:     parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize:    parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		GenAIBackend:          strings.ToLower(getEnvOrDefault("GENAI_BACKEND", GenAIGemini)),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		StorageBackend:        strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageLocal)),
		AssetBaseURL:          os.Getenv("ASSET_BASE_URL"),
		LocalAssetDir:         getEnvOrDefault("LOCAL_ASSET_DIR", "public"),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "templates"),
		CatalogPath:           os.Getenv("CATALOG_PATH"),
		HistoryDBPath:         os.Getenv("HISTORY_DB_PATH"),
		SketchArea:            sketch,
		SwatchSize:            int(parseIntOrDefault("SWATCH_SIZE", 256)),
		SessionTTL:            parseDurationOrDefault("SESSION_TTL", 24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server-level settings. A missing model credential is not an
// error here: it is reported when a transform is attempted.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.TransformTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, transform=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.TransformTimeout)
	}
	switch c.GenAIBackend {
	case GenAIGemini, GenAIMock:
	default:
		return fmt.Errorf("invalid GENAI_BACKEND: %q", c.GenAIBackend)
	}
	switch c.StorageBackend {
	case StorageHTTP:
		if c.AssetBaseURL == "" {
			return fmt.Errorf("ASSET_BASE_URL is required for STORAGE_BACKEND=http")
		}
	case StorageAzure:
		if c.AzureStorageAccount == "" || c.AzureStorageKey == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required for STORAGE_BACKEND=azure")
		}
	case StorageLocal:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q", c.StorageBackend)
	}
	if c.SwatchSize < 8 || c.SwatchSize > 2048 {
		return fmt.Errorf("SWATCH_SIZE must be within [8, 2048] (got %d)", c.SwatchSize)
	}
	if c.SketchArea.Width <= 0 || c.SketchArea.Height <= 0 {
		return fmt.Errorf("SKETCH_AREA must have a positive size")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseRectOrDefault reads "x,y,width,height".
func parseRectOrDefault(key string, defaultValue geometry.Rect) (geometry.Rect, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	fields := strings.Split(value, ",")
	if len(fields) != 4 {
		return geometry.Rect{}, fmt.Errorf("invalid %s: %q (want x,y,width,height)", key, value)
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid %s: %q: %w", key, value, err)
		}
		nums[i] = n
	}
	return geometry.NewRect(nums[0], nums[1], nums[2], nums[3]), nil
}
