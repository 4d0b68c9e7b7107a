package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"advisory-service/internal/ai/gemini"
	redisdb "advisory-service/internal/database/redis"
	"advisory-service/internal/models"
)

const planCacheTTL = 24 * time.Hour

// StrategyService composes investment plans: the predictor supplies the
// figures, Gemini drafts the narrative strategies, and a deterministic
// template takes over whenever the AI call fails. Generated plans are
// cached in Redis; recommendations themselves never are.
type StrategyService struct {
	predictor   *PredictorService
	redisClient *redisdb.Client
	selector    *gemini.GeminiClientSelector
}

func NewStrategyService(predictor *PredictorService, redisClient *redisdb.Client, selector *gemini.GeminiClientSelector) *StrategyService {
	return &StrategyService{
		predictor:   predictor,
		redisClient: redisClient,
		selector:    selector,
	}
}

// GenerateInvestmentPlan builds the full plan for a profile. The error
// return only fires under the strict matching policy; with the fallback
// ladder a plan always comes back, AI or templated.
func (s *StrategyService) GenerateInvestmentPlan(ctx context.Context, profile models.VillageProfile) (*models.InvestmentPlan, error) {
	cacheKey := planCacheKey(profile)
	if s.redisClient != nil {
		var cached models.InvestmentPlan
		if err := s.redisClient.GetJSON(ctx, cacheKey, &cached); err == nil {
			slog.Info("Investment plan served from cache", "village", profile.Village, "plan_id", cached.ID)
			return &cached, nil
		}
	}

	recommendations, err := s.predictor.PredictOptimalCrops(profile)
	if err != nil {
		return nil, fmt.Errorf("predict crops: %w", err)
	}

	report, err := s.predictor.ValidatePredictionConfidence(profile)
	if err != nil {
		return nil, fmt.Errorf("confidence: %w", err)
	}

	var fertilizers []string
	if len(recommendations) > 0 {
		fertilizers = s.predictor.GetFertilizerRecommendations(recommendations[0].Crop, profile.SoilType)
	}

	level := confidenceLevel(report.Confidence)
	strategies, source := s.composeStrategies(ctx, profile, recommendations, report.Confidence, level, fertilizers)

	for i := range strategies {
		strategies[i].ID = uuid.NewString()
		strategies[i].HistoricalSuccess = s.predictor.GetHistoricalSuccessRate(strategies[i], profile)
	}

	plan := &models.InvestmentPlan{
		ID:              uuid.New(),
		Village:         profile.Village,
		Confidence:      report.Confidence,
		ConfidenceLevel: level,
		Recommendations: recommendations,
		Fertilizers:     fertilizers,
		Strategies:      strategies,
		Source:          source,
		GeneratedAt:     time.Now(),
	}

	if s.redisClient != nil {
		if err := s.redisClient.SetJSON(ctx, cacheKey, plan, planCacheTTL); err != nil {
			slog.Warn("Failed to cache investment plan", "village", profile.Village, "error", err)
		}
	}
	return plan, nil
}

// composeStrategies asks Gemini for the narrative strategies and degrades
// to the fixed template on any failure. Consumers rely on this fallback:
// an unreachable AI service must never surface as a plan error.
func (s *StrategyService) composeStrategies(
	ctx context.Context,
	profile models.VillageProfile,
	recommendations []models.CropRecommendation,
	confidence int,
	level string,
	fertilizers []string,
) ([]models.InvestmentStrategy, string) {
	if s.selector == nil || s.selector.GetClientCount() == 0 {
		return templateStrategies(recommendations, confidence), "template"
	}

	prompt := gemini.BuildInvestmentStrategyPrompt(profile, recommendations, confidence, level, fertilizers)
	aiResp, err := gemini.SendStructuredWithRetry(ctx, prompt, s.selector)
	if err != nil {
		slog.Warn("AI strategy generation failed, using templated plan", "village", profile.Village, "error", err)
		return templateStrategies(recommendations, confidence), "template"
	}

	strategies, err := parseStrategies(aiResp)
	if err != nil {
		slog.Warn("AI strategy response unusable, using templated plan", "village", profile.Village, "error", err)
		return templateStrategies(recommendations, confidence), "template"
	}
	return strategies, "ai"
}

func parseStrategies(aiResp map[string]any) ([]models.InvestmentStrategy, error) {
	raw, ok := aiResp["strategies"]
	if !ok {
		return nil, fmt.Errorf("response has no strategies key")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal strategies: %w", err)
	}

	var strategies []models.InvestmentStrategy
	if err := json.Unmarshal(data, &strategies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategies: %w", err)
	}

	valid := strategies[:0]
	for _, strategy := range strategies {
		if strategy.Name == "" || len(strategy.Crops) == 0 {
			continue
		}
		valid = append(valid, strategy)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no usable strategy in AI response")
	}
	return valid, nil
}

// templateStrategies is the deterministic fallback plan. Investment
// amounts scale with the confidence tier so a low-evidence village is
// never steered toward the largest outlay.
func templateStrategies(recommendations []models.CropRecommendation, confidence int) []models.InvestmentStrategy {
	crops := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		crops = append(crops, rec.Crop)
	}
	if len(crops) == 0 {
		crops = []string{"Rice", "Wheat", "Maize"}
	}

	amounts := [3]float64{150000, 100000, 50000}
	switch {
	case confidence >= 70:
		amounts = [3]float64{500000, 300000, 150000}
	case confidence >= 50:
		amounts = [3]float64{300000, 200000, 100000}
	}

	topCrops := func(n int) []string {
		if len(crops) < n {
			n = len(crops)
		}
		return crops[:n]
	}

	return []models.InvestmentStrategy{
		{
			Name:             "Intensive Cultivation",
			Description:      "Commit the full recommended crop mix with supporting irrigation infrastructure to maximize output across seasons.",
			Crops:            topCrops(3),
			Structures:       []string{"Drip irrigation network", "Borewell recharge pit", "Crop storage shed"},
			InvestmentAmount: amounts[0],
			ExpectedROI:      "18-24% over 3 years",
			Timeline:         "3 seasons",
		},
		{
			Name:             "Balanced Portfolio",
			Description:      "Split acreage between the two strongest recommendations, keeping part of the land on current crops as a hedge.",
			Crops:            topCrops(2),
			Structures:       []string{"Sprinkler irrigation lines", "Compost unit"},
			InvestmentAmount: amounts[1],
			ExpectedROI:      "12-18% over 3 years",
			Timeline:         "2 seasons",
		},
		{
			Name:             "Conservative Entry",
			Description:      "Pilot the top recommendation on a limited plot before scaling, with rainwater harvesting to de-risk dry spells.",
			Crops:            topCrops(1),
			Structures:       []string{"Rainwater harvesting pond"},
			InvestmentAmount: amounts[2],
			ExpectedROI:      "8-12% over 2 years",
			Timeline:         "1 season",
		},
	}
}

func confidenceLevel(confidence int) string {
	switch {
	case confidence >= 70:
		return "high"
	case confidence >= 50:
		return "medium"
	default:
		return "low"
	}
}

// planCacheKey hashes the normalized profile so identical queries share a
// cache entry regardless of field ordering in the request body.
func planCacheKey(profile models.VillageProfile) string {
	normalized := profile
	normalized.Village = strings.ToLower(strings.TrimSpace(profile.Village))
	normalized.SoilType = normalizeSoil(profile.SoilType)
	crops := make([]string, 0, len(profile.CurrentCrops))
	for _, crop := range profile.CurrentCrops {
		crops = append(crops, strings.ToLower(strings.TrimSpace(crop)))
	}
	normalized.CurrentCrops = crops

	data, _ := json.Marshal(normalized)
	sum := sha256.Sum256(data)
	return "advisory:plan:" + hex.EncodeToString(sum[:16])
}
