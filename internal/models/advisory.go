package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// ADVISORY QUERY TYPES
// ============================================================================

// VillageProfile is the query input describing the village asking for
// recommendations. Constructed fresh per request, never persisted.
type VillageProfile struct {
	Village          string   `json:"village"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	SoilType         string   `json:"soil_type"`
	AnnualRainfallMM float64  `json:"annual_rainfall_mm"`
	CurrentCrops     []string `json:"current_crops"`
	GroundwaterDepth float64  `json:"groundwater_depth_m,omitempty"`
	FloodHistory     string   `json:"flood_history,omitempty"`
}

// CropRecommendation is one ranked crop suggestion. Recomputed on every
// query from the matched records, never cached.
type CropRecommendation struct {
	Crop               string `json:"crop"`
	PlantingWindow     string `json:"planting_window"`
	IrrigationSchedule string `json:"irrigation_schedule"`
	ExpectedYieldGain  string `json:"expected_yield_gain"`
	RiskLevel          string `json:"risk_level"`
}

// DataQuality reports how well each dataset dimension covers the profile,
// as percentages.
type DataQuality struct {
	Rainfall int `json:"rainfall"`
	Soil     int `json:"soil"`
	Crops    int `json:"crops"`
}

// ConfidenceReport is the full confidence breakdown returned by the
// validation endpoint.
type ConfidenceReport struct {
	Confidence       int         `json:"confidence"`
	IsHighConfidence bool        `json:"is_high_confidence"`
	Recommendations  []string    `json:"recommendations"`
	DataQuality      DataQuality `json:"data_quality"`
}

// ============================================================================
// INVESTMENT PLAN TYPES
// ============================================================================

// InvestmentStrategy is one named strategy inside a plan. Crops lists the
// crop names the strategy commits to; the success rate is estimated from
// historical records after composition.
type InvestmentStrategy struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Crops             []string `json:"crops"`
	Structures        []string `json:"structures"`
	InvestmentAmount  float64  `json:"investment_amount"`
	ExpectedROI       string   `json:"expected_roi"`
	Timeline          string   `json:"timeline"`
	HistoricalSuccess int      `json:"historical_success_rate"`
}

// InvestmentPlan bundles the strategies with the figures they were
// composed from.
type InvestmentPlan struct {
	ID              uuid.UUID            `json:"id"`
	Village         string               `json:"village"`
	Confidence      int                  `json:"confidence"`
	ConfidenceLevel string               `json:"confidence_level"`
	Recommendations []CropRecommendation `json:"recommendations"`
	Fertilizers     []string             `json:"fertilizers"`
	Strategies      []InvestmentStrategy `json:"strategies"`
	Source          string               `json:"source"` // "ai" or "template"
	GeneratedAt     time.Time            `json:"generated_at"`
}
