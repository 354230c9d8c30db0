package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultImagesSubDir  = "imagenes"
	defaultDatabasePath  = "personas.db"
	defaultPort          = "8080"
	defaultDBLogLevel    = "warn"
	defaultMaxUploadSize = 8 << 20
	defaultMaxImageKB    = 2048
	defaultImageMaxSize  = 1024
	defaultRequestSecs   = 30

	// headroom for the response once the handler deadline has passed
	writeTimeoutGrace = 5 * time.Second
)

type Config struct {
	// http listen port
	Port string

	// database path (sqlite DSN)
	DatabasePath string
	DBLogLevel   string // silent|error|warn|info

	// media storage configuration
	MediaStoragePath string // absolute root of publicly served files
	ImagesSubDir     string // subdirectory for uploaded persona images

	// upload limits
	MaxUploadBytes int64 // whole request body
	MaxImageKB     int   // single uploaded image
	ImageMaxSize   int   // longest side in px after processing

	CORSAllowedOrigins []string

	// handler deadline; the server write timeout is derived from it
	RequestTimeout time.Duration
}

// WriteTimeout is the http.Server write timeout. It outlasts RequestTimeout so
// the router can still answer 504 when a handler runs out of time.
func (c Config) WriteTimeout() time.Duration {
	return c.RequestTimeout + writeTimeoutGrace
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvListOrDefault(envVar string, defaultVal []string) []string {
	valStr := os.Getenv(envVar)
	if strings.TrimSpace(valStr) == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func LoadConfig() (Config, error) {
	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	imagesSubDir := getEnvOrDefault("IMAGES_SUBDIR", DefaultImagesSubDir)
	if filepath.IsAbs(imagesSubDir) || strings.Contains(imagesSubDir, "..") {
		return Config{}, fmt.Errorf("IMAGES_SUBDIR must be a relative path inside the media storage, got '%s'", imagesSubDir)
	}

	dbLogLevel := strings.ToLower(getEnvOrDefault("DB_LOG_LEVEL", defaultDBLogLevel))
	switch dbLogLevel {
	case "silent", "error", "warn", "info":
	default:
		log.Printf("Warning: Invalid DB_LOG_LEVEL '%s'. Using default %s.", dbLogLevel, defaultDBLogLevel)
		dbLogLevel = defaultDBLogLevel
	}

	cfg := Config{
		Port:               getEnvOrDefault("PORT", defaultPort),
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		DBLogLevel:         dbLogLevel,
		MediaStoragePath:   absMediaStorage,
		ImagesSubDir:       imagesSubDir,
		MaxUploadBytes:     int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadSize)),
		MaxImageKB:         getEnvIntOrDefault("MAX_IMAGE_KB", defaultMaxImageKB),
		ImageMaxSize:       getEnvIntOrDefault("IMAGE_MAX_SIZE", defaultImageMaxSize),
		CORSAllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RequestTimeout:     time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestSecs)) * time.Second,
	}

	return cfg, nil
}
