package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ArchiveModeSource stores the whole uploaded image for every detected class.
	ArchiveModeSource = "source"
	// ArchiveModeCrop stores only the bounding-box crop of the detection.
	ArchiveModeCrop = "crop"
)

type Config struct {
	Port             int
	ModelPath        string
	ClassesPath      string
	MeaningsPath     string
	DatasetDirectory string
	StaticDirectory  string
	UploadsDirectory string
	TempDirectory    string // empty means os.TempDir()
	DatabasePath     string
	LogDirectory     string

	InputSize        int     // Square network input, YOLOv8 exports use 640
	NMSThreshold     float64 // IoU above which overlapping boxes of one class are suppressed
	InferenceWorkers int     // Number of independently loaded networks

	ArchiveEnabled bool
	ArchiveMode    string
	SaveAnnotated  bool
	MaxUploadSize  int64 // bytes

	RateLimit  float64 // detect requests per second
	RateBurst  int
	CORSOrigin string
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over .env values.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvAsInt("PORT", 8000),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "best.onnx")),
		ClassesPath:      getEnv("CLASSES_PATH", filepath.Join(".", "models", "classes.txt")),
		MeaningsPath:     getEnv("MEANINGS_PATH", filepath.Join(".", "meanings.csv")),
		DatasetDirectory: getEnv("DATASET_DIR", filepath.Join(".", "Dataset")),
		StaticDirectory:  getEnv("STATIC_DIR", filepath.Join(".", "static")),
		UploadsDirectory: getEnv("UPLOADS_DIR", filepath.Join(".", "static", "uploads")),
		TempDirectory:    getEnv("TEMP_DIR", ""),
		DatabasePath:     getEnv("DB_PATH", filepath.Join(".", "data", "dataset.db")),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),

		InputSize:        getEnvAsInt("INPUT_SIZE", 640),
		NMSThreshold:     getEnvAsFloat("NMS_THRESHOLD", 0.7),
		InferenceWorkers: getEnvAsInt("INFERENCE_WORKERS", 2),

		ArchiveEnabled: getEnvAsBool("ARCHIVE_ENABLED", true),
		ArchiveMode:    normalizeArchiveMode(getEnv("ARCHIVE_MODE", ArchiveModeSource)),
		SaveAnnotated:  getEnvAsBool("SAVE_ANNOTATED", false),
		MaxUploadSize:  getEnvAsInt64("MAX_UPLOAD_MB", 50) << 20,

		RateLimit:  getEnvAsFloat("RATE_LIMIT", 5),
		RateBurst:  getEnvAsInt("RATE_BURST", 10),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}
}

func normalizeArchiveMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), ArchiveModeCrop) {
		return ArchiveModeCrop
	}
	return ArchiveModeSource
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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
