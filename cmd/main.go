package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"advisory-service/internal/ai/gemini"
	"advisory-service/internal/config"
	"advisory-service/internal/database/minio"
	"advisory-service/internal/database/redis"
	"advisory-service/internal/dataset"
	"advisory-service/internal/handlers"
	"advisory-service/internal/services"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/agrisa", "log", "advisory_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))

	return file, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using process environment")
	}

	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	// Dataset source: MinIO bucket when configured, local files otherwise.
	var source dataset.Source = dataset.FileSource{}
	if cfg.DatasetCfg.MinioBucket != "" {
		minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
		if err != nil {
			log.Printf("MinIO unavailable, falling back to local dataset files: %s", err)
		} else {
			if err := minioClient.EnsureBucket(context.Background(), cfg.DatasetCfg.MinioBucket); err != nil {
				log.Printf("Failed to ensure dataset bucket: %s", err)
			}
			source = dataset.MinioSource{Client: minioClient, Bucket: cfg.DatasetCfg.MinioBucket}
		}
	}

	store := dataset.NewStore()
	names := dataset.DatasetNames{
		Agricultural: cfg.DatasetCfg.AgriculturalPath,
		CropTrials:   cfg.DatasetCfg.CropTrialPath,
		Fertilizers:  cfg.DatasetCfg.FertilizerPath,
		Rainfall:     cfg.DatasetCfg.RainfallPath,
	}
	// Load in the background; queries arriving before it finishes see an
	// empty store and answer with the built-in defaults.
	go func() {
		if err := store.LoadAll(context.Background(), source, names); err != nil {
			log.Printf("dataset load finished with errors: %s", err)
		}
	}()

	var redisClient *redis.Client
	redisClient, err = redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Printf("Redis unavailable, plan caching disabled: %s", err)
		redisClient = nil
	}

	var selector *gemini.GeminiClientSelector
	if cfg.GeminiAPICfg.APIKey != "" {
		client, err := gemini.NewGenAIClient(cfg.GeminiAPICfg.APIKey, cfg.GeminiAPICfg.FlashName, cfg.GeminiAPICfg.ProName)
		if err != nil {
			log.Printf("Gemini unavailable, templated plans only: %s", err)
		} else {
			selector = gemini.NewGeminiClientSelector([]gemini.GeminiClient{*client})
		}
	}

	predictor := services.NewPredictorService(store, cfg.MatchCfg)
	strategyService := services.NewStrategyService(predictor, redisClient, selector)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Advisory service is healthy")
	})

	advisoryHandler := handlers.NewAdvisoryHandler(predictor, strategyService, store)
	advisoryHandler.RegisterRoutes(app)

	log.Printf("Advisory service listening on port %s (match policy: %s)", cfg.Port, cfg.MatchCfg.Policy)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
