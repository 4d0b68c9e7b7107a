package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"advisory-service/internal/models"
)

// ============================================================================
// TEST SUITE 1: TEMPLATED FALLBACK PLAN
// ============================================================================

func TestGenerateInvestmentPlan_NoAIFallsBackToTemplate(t *testing.T) {
	records := []models.AgriculturalRecord{
		createAgriRecord("Cotton", "black", "kharif", 850, 4, 2400, 38),
		createAgriRecord("Jowar", "black", "kharif", 950, 3, 1800, 22),
		createAgriRecord("Soybean", "black", "kharif", 1000, 4, 1900, 26),
	}
	predictor := newLadderPredictor(records)
	service := NewStrategyService(predictor, nil, nil)

	plan, err := service.GenerateInvestmentPlan(context.Background(), models.VillageProfile{
		Village:          "Shivpur",
		SoilType:         "black",
		AnnualRainfallMM: 900,
		CurrentCrops:     []string{"cotton"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "template", plan.Source, "without an AI client the templated plan must be produced")
	assert.Len(t, plan.Strategies, 3)
	assert.NotEmpty(t, plan.Recommendations)
	for _, strategy := range plan.Strategies {
		assert.NotEmpty(t, strategy.ID)
		assert.NotEmpty(t, strategy.Crops)
		assert.GreaterOrEqual(t, strategy.HistoricalSuccess, 25)
		assert.LessOrEqual(t, strategy.HistoricalSuccess, 90)
	}
}

func TestGenerateInvestmentPlan_EmptyStoreStillProducesPlan(t *testing.T) {
	predictor := newLadderPredictor(nil)
	service := NewStrategyService(predictor, nil, nil)

	plan, err := service.GenerateInvestmentPlan(context.Background(), models.VillageProfile{
		Village:          "Shivpur",
		SoilType:         "black",
		AnnualRainfallMM: 900,
	})

	assert.NoError(t, err)
	assert.Equal(t, DefaultRecommendations(), plan.Recommendations)
	assert.Len(t, plan.Strategies, 3)
}

// ============================================================================
// TEST SUITE 2: TEMPLATE AMOUNTS BY CONFIDENCE TIER
// ============================================================================

func TestTemplateStrategies_AmountsScaleWithConfidence(t *testing.T) {
	recommendations := DefaultRecommendations()

	high := templateStrategies(recommendations, 80)
	medium := templateStrategies(recommendations, 60)
	low := templateStrategies(recommendations, 30)

	assert.Equal(t, 500000.0, high[0].InvestmentAmount)
	assert.Equal(t, 300000.0, medium[0].InvestmentAmount)
	assert.Equal(t, 150000.0, low[0].InvestmentAmount)

	for _, strategies := range [][]models.InvestmentStrategy{high, medium, low} {
		assert.Len(t, strategies, 3)
		assert.Greater(t, strategies[0].InvestmentAmount, strategies[1].InvestmentAmount,
			"intensive must always cost more than balanced")
		assert.Greater(t, strategies[1].InvestmentAmount, strategies[2].InvestmentAmount,
			"balanced must always cost more than conservative")
	}
}

func TestTemplateStrategies_CropsComeFromRecommendations(t *testing.T) {
	recommendations := []models.CropRecommendation{
		{Crop: "Cotton"},
		{Crop: "Jowar"},
	}

	strategies := templateStrategies(recommendations, 60)

	assert.Equal(t, []string{"Cotton", "Jowar"}, strategies[0].Crops,
		"intensive takes every recommended crop available")
	assert.Equal(t, []string{"Cotton", "Jowar"}, strategies[1].Crops)
	assert.Equal(t, []string{"Cotton"}, strategies[2].Crops, "conservative pilots only the top crop")
}

// ============================================================================
// TEST SUITE 3: AI RESPONSE PARSING
// ============================================================================

func TestParseStrategies_ValidResponse(t *testing.T) {
	aiResp := map[string]any{
		"strategies": []any{
			map[string]any{
				"name":              "Drip-fed Cotton Expansion",
				"description":       "Expand cotton with drip lines.",
				"crops":             []any{"Cotton"},
				"structures":        []any{"Drip irrigation network"},
				"investment_amount": 250000.0,
				"expected_roi":      "15-20% over 3 years",
				"timeline":          "2 seasons",
			},
		},
	}

	strategies, err := parseStrategies(aiResp)

	assert.NoError(t, err)
	assert.Len(t, strategies, 1)
	assert.Equal(t, "Drip-fed Cotton Expansion", strategies[0].Name)
	assert.Equal(t, 250000.0, strategies[0].InvestmentAmount)
}

func TestParseStrategies_DropsUnusableEntries(t *testing.T) {
	aiResp := map[string]any{
		"strategies": []any{
			map[string]any{"name": "", "crops": []any{"Cotton"}},
			map[string]any{"name": "No crops listed"},
		},
	}

	_, err := parseStrategies(aiResp)

	assert.Error(t, err, "a response with no usable strategy must be rejected so the template takes over")
}

func TestParseStrategies_MissingKey(t *testing.T) {
	_, err := parseStrategies(map[string]any{"message": "I cannot help with that"})
	assert.Error(t, err)
}

// ============================================================================
// TEST SUITE 4: PLAN CACHE KEY
// ============================================================================

func TestPlanCacheKey_NormalizesEquivalentProfiles(t *testing.T) {
	a := models.VillageProfile{Village: "Shivpur", SoilType: "Black Soil", AnnualRainfallMM: 900, CurrentCrops: []string{"Cotton"}}
	b := models.VillageProfile{Village: " shivpur ", SoilType: "black_soil", AnnualRainfallMM: 900, CurrentCrops: []string{"cotton"}}

	assert.Equal(t, planCacheKey(a), planCacheKey(b), "case and soil spelling variants must share a cache entry")
}

func TestPlanCacheKey_DistinguishesProfiles(t *testing.T) {
	a := models.VillageProfile{Village: "Shivpur", SoilType: "black", AnnualRainfallMM: 900}
	b := models.VillageProfile{Village: "Shivpur", SoilType: "black", AnnualRainfallMM: 1200}

	assert.NotEqual(t, planCacheKey(a), planCacheKey(b))
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, "high", confidenceLevel(70))
	assert.Equal(t, "medium", confidenceLevel(50))
	assert.Equal(t, "low", confidenceLevel(49))
}
