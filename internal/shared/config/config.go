package config

import (
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultAllowedOrigin = "http://localhost:3000"

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// CORS
	AllowedOrigins []string

	// OCR engine
	OCREngine         string // "tesseract" (CLI) or "gosseract" (cgo build)
	TesseractCmd      string
	TessdataPrefix    string
	OCRMinConfidence  float64
	OCRTimeout        time.Duration // 0 means no bound
	OCRMaxConcurrency int
	OCRTargetHeight   int // 0 disables rescaling

	// Object store
	StorageProvider     string // local, s3, cloudinary, none
	StoreImages         bool
	StorageFolder       string
	UploadPath          string
	BaseURL             string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSRegion           string
	AWSS3Bucket         string
	AWSS3BaseURL        string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Deferred persistence
	PersistWorkers    int
	PersistQueueSize  int
	PersistMaxRetries int
	PersistJobTimeout time.Duration

	// Orphaned object janitor
	OrphanSweepSchedule string
	OrphanMaxAttempts   int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AllowedOrigins: ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),

		OCREngine:         getEnv("OCR_ENGINE", "tesseract"),
		TesseractCmd:      getEnv("TESSERACT_CMD", "tesseract"),
		TessdataPrefix:    os.Getenv("TESSDATA_PREFIX"),
		OCRMinConfidence:  getEnvFloat("OCR_MIN_CONFIDENCE", 35),
		OCRTimeout:        getEnvDuration("OCR_TIMEOUT", 0),
		OCRMaxConcurrency: getEnvInt("OCR_MAX_CONCURRENCY", runtime.NumCPU()),
		OCRTargetHeight:   getEnvInt("OCR_TARGET_HEIGHT", 0),

		StorageProvider:     strings.ToLower(getEnv("STORAGE_PROVIDER", "local")),
		StoreImages:         getEnvBool("STORE_IMAGES", true),
		StorageFolder:       getEnv("STORAGE_FOLDER", "ocr-images"),
		UploadPath:          getEnv("UPLOAD_PATH", "./uploads"),
		BaseURL:             os.Getenv("BASE_URL"),
		AWSAccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:           getEnv("AWS_REGION", "ap-southeast-1"),
		AWSS3Bucket:         os.Getenv("AWS_S3_BUCKET"),
		AWSS3BaseURL:        os.Getenv("AWS_S3_BASE_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		PersistWorkers:    getEnvInt("PERSIST_WORKERS", 2),
		PersistQueueSize:  getEnvInt("PERSIST_QUEUE_SIZE", 256),
		PersistMaxRetries: getEnvInt("PERSIST_MAX_RETRIES", 3),
		PersistJobTimeout: getEnvDuration("PERSIST_JOB_TIMEOUT", 30*time.Second),

		OrphanSweepSchedule: getEnv("ORPHAN_SWEEP_SCHEDULE", "@every 15m"),
		OrphanMaxAttempts:   getEnvInt("ORPHAN_MAX_ATTEMPTS", 10),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.OCRMaxConcurrency < 1 {
		cfg.OCRMaxConcurrency = 1
	}
	if cfg.PersistWorkers < 1 {
		cfg.PersistWorkers = 1
	}

	return cfg
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseOrigins splits a comma-separated allow-list, trimming blanks and
// duplicates. An empty value falls back to the local frontend origin.
func ParseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		raw = defaultAllowedOrigin
	}

	seen := make(map[string]bool)
	origins := []string{}
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" || seen[origin] {
			continue
		}
		seen[origin] = true
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	return origins
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ invalid number, using default")
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ invalid boolean, using default")
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ invalid duration, using default")
		return fallback
	}
	return d
}
