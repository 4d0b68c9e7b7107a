package config

import (
	"os"
	"strconv"
)

type AdvisoryServiceConfig struct {
	Port         string
	DatasetCfg   DatasetConfig
	MatchCfg     MatchConfig
	RedisCfg     RedisConfig
	MinioCfg     MinioConfig
	GeminiAPICfg GeminiAPIConfig
}

// DatasetConfig points the store at its source files. When MinioBucket is
// set the objects are fetched from MinIO instead of the local paths.
type DatasetConfig struct {
	AgriculturalPath string
	CropTrialPath    string
	FertilizerPath   string
	RainfallPath     string
	MinioBucket      string
}

// MatchConfig carries every tolerance threshold of the matching engine so
// both the fallback-ladder and the strict-rejection policies are
// expressible without code changes.
type MatchConfig struct {
	Policy        string // "ladder" or "strict"
	MinCandidates int

	// Fallback-ladder rainfall tolerances (mm) per tier.
	Tier1RainfallMM float64
	Tier2RainfallMM float64
	Tier4RainfallMM float64
	Tier5Cap        int

	// Strict-policy bounds over the crop trial dataset.
	StrictRainfallMM float64
	StrictTempMinC   float64
	StrictTempMaxC   float64
	StrictPHMin      float64
	StrictPHMax      float64

	// Confidence clamps. The strict policy errors below its own floor
	// instead of clamping up.
	ConfidenceFloor  int
	ConfidenceCeil   int
	StrictConfidence int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

type GeminiAPIConfig struct {
	APIKey    string
	FlashName string
	ProName   string
}

func New() *AdvisoryServiceConfig {
	return &AdvisoryServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		DatasetCfg: DatasetConfig{
			AgriculturalPath: getEnvOrDefault("DATASET_AGRICULTURAL", "data/agricultural_records.csv"),
			CropTrialPath:    getEnvOrDefault("DATASET_CROP_TRIALS", "data/crop_trials.csv"),
			FertilizerPath:   getEnvOrDefault("DATASET_FERTILIZERS", "data/fertilizers.csv"),
			RainfallPath:     getEnvOrDefault("DATASET_RAINFALL", "data/rainfall.csv"),
			MinioBucket:      getEnvOrDefault("DATASET_MINIO_BUCKET", ""),
		},
		MatchCfg: MatchConfig{
			Policy:           getEnvOrDefault("MATCH_POLICY", "ladder"),
			MinCandidates:    getEnvIntOrDefault("MATCH_MIN_CANDIDATES", 3),
			Tier1RainfallMM:  getEnvFloatOrDefault("MATCH_TIER1_RAINFALL_MM", 200),
			Tier2RainfallMM:  getEnvFloatOrDefault("MATCH_TIER2_RAINFALL_MM", 400),
			Tier4RainfallMM:  getEnvFloatOrDefault("MATCH_TIER4_RAINFALL_MM", 600),
			Tier5Cap:         getEnvIntOrDefault("MATCH_TIER5_CAP", 10),
			StrictRainfallMM: getEnvFloatOrDefault("MATCH_STRICT_RAINFALL_MM", 50),
			StrictTempMinC:   getEnvFloatOrDefault("MATCH_STRICT_TEMP_MIN_C", 15),
			StrictTempMaxC:   getEnvFloatOrDefault("MATCH_STRICT_TEMP_MAX_C", 40),
			StrictPHMin:      getEnvFloatOrDefault("MATCH_STRICT_PH_MIN", 5.0),
			StrictPHMax:      getEnvFloatOrDefault("MATCH_STRICT_PH_MAX", 8.5),
			ConfidenceFloor:  getEnvIntOrDefault("CONFIDENCE_FLOOR", 25),
			ConfidenceCeil:   getEnvIntOrDefault("CONFIDENCE_CEIL", 95),
			StrictConfidence: getEnvIntOrDefault("CONFIDENCE_STRICT_FLOOR", 40),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKey:    getEnvOrDefault("GEMINI_KEY", ""),
			FlashName: getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
			ProName:   getEnvOrDefault("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
