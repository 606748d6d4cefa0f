package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCascadeFile is the Haar cascade used when CASCADE is not set.
const DefaultCascadeFile = "haarcascade_frontalface_default.xml"

type Config struct {
	Source           string        // device index, or a file path / stream URL
	CascadePath      string        // Haar cascade XML
	SamplingInterval time.Duration // minimum spacing between logged samples
	CheckPeriod      int           // check the clock every N frames
	OutputDirectory  string        // where session CSV files go
	LogDirectory     string
	ShowWindow       bool
	QuitKey          rune
	HTTPPort         int    // 0 disables the preview server
	HTTPToken        string // empty leaves the HTTP endpoints open
	DBPath           string
	ScaleFactor      float64
	MinNeighbors     int
	MinSize          int
}

// Load reads the configuration from the environment. A .env file in the working
// directory, if present, is applied first without overriding variables already set.
func Load() *Config {
	_ = godotenv.Load()

	cascadeDir := getEnv("CASCADE_DIR", filepath.Join(".", "data"))

	return &Config{
		Source:           getEnv("WEBCAM", "0"),
		CascadePath:      getEnv("CASCADE", filepath.Join(cascadeDir, DefaultCascadeFile)),
		SamplingInterval: getEnvAsDuration("SAMPLE_INTERVAL_MS", time.Second),
		CheckPeriod:      getEnvAsInt("CHECK_PERIOD", 10),
		OutputDirectory:  getEnv("OUTPUT_DIR", "."),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ShowWindow:       getEnvAsBool("WINDOW", true),
		QuitKey:          getEnvAsRune("QUIT_KEY", 'q'),
		HTTPPort:         getEnvAsInt("HTTP_PORT", 0),
		HTTPToken:        getEnv("HTTP_TOKEN", ""),
		DBPath:           getEnv("DB_PATH", ""),
		ScaleFactor:      getEnvAsFloat("SCALE_FACTOR", 1.1),
		MinNeighbors:     getEnvAsInt("MIN_NEIGHBORS", 5),
		MinSize:          getEnvAsInt("MIN_SIZE", 30),
	}
}

// DeviceIndex reports whether Source names a numeric capture device.
func (c *Config) DeviceIndex() (int, bool) {
	index, err := strconv.Atoi(c.Source)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration reads a millisecond count.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvAsRune(key string, defaultValue rune) rune {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return []rune(value)[0]
}
