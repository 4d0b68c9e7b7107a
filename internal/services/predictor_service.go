package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"advisory-service/internal/config"
	"advisory-service/internal/dataset"
	"advisory-service/internal/models"
)

// ErrInsufficientData is returned by the strict matching policy when a
// tolerance window yields fewer candidates than its hard minimum. The
// fallback-ladder policy never returns it; it degrades instead.
var ErrInsufficientData = errors.New("insufficient historical data")

const (
	PolicyLadder = "ladder"
	PolicyStrict = "strict"
)

// Match tiers of the fallback ladder, in the order they are tried.
const (
	TierStrictMatch    = 1 // ±200mm, exact soil, rating >= 3
	TierRelaxedRain    = 2 // ±400mm, exact soil, rating >= 3
	TierSimilarSoil    = 3 // ±400mm, similar soil group, rating >= 3
	TierVeryRelaxed    = 4 // ±600mm, rating >= 4, soil dropped
	TierTopPerformers  = 5 // rating >= 4 only, capped
	TierBuiltinDefault = 6 // fixed generic recommendations, no scoring
)

// PredictorService is the matching and scoring engine. It only ever reads
// the store, so a single instance is safe for concurrent requests.
type PredictorService struct {
	store *dataset.Store
	cfg   config.MatchConfig
}

func NewPredictorService(store *dataset.Store, cfg config.MatchConfig) *PredictorService {
	return &PredictorService{store: store, cfg: cfg}
}

// similarSoilGroups maps a normalized soil type to the group of soils
// considered interchangeable for Tier 3 matching. Kept as data rather than
// conditionals so the groups can be tuned in one place.
var similarSoilGroups = map[string][]string{
	"black":    {"black", "red", "alluvial"},
	"sandy":    {"sandy", "loamy", "red"},
	"red":      {"red", "black", "laterite"},
	"alluvial": {"alluvial", "black", "clay"},
	"loamy":    {"loamy", "sandy", "alluvial"},
	"clay":     {"clay", "alluvial", "black"},
}

// normalizeSoil folds case, separators and the "_soil" suffix so that
// "Black Soil", "black_soil" and "black" all compare equal.
func normalizeSoil(soil string) string {
	s := strings.ToLower(strings.TrimSpace(soil))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.TrimSuffix(s, "_soil")
	return s
}

// soilGroup returns the similar-soil group for a soil type. Unrecognized
// soils map to a default group that still contains the soil itself.
func soilGroup(soil string) []string {
	key := normalizeSoil(soil)
	if group, ok := similarSoilGroups[key]; ok {
		return group
	}
	return []string{key, "black", "red", "alluvial"}
}

func soilInGroup(recordSoil string, group []string) bool {
	normalized := normalizeSoil(recordSoil)
	for _, g := range group {
		if normalized == g {
			return true
		}
	}
	return false
}

// MatchResult carries the candidate set together with the tier that
// produced it.
type MatchResult struct {
	Tier       int
	Candidates []models.AgriculturalRecord
}

// matchCandidates walks the tolerance ladder until a tier yields enough
// candidates. Tiers 1-3 need MinCandidates; tier 4 is accepted with any
// non-empty result; tier 5 fires only when tier 4 found nothing at all.
func (p *PredictorService) matchCandidates(profile models.VillageProfile) MatchResult {
	records := p.store.AgriculturalRecords()
	if len(records) == 0 {
		return MatchResult{Tier: TierBuiltinDefault}
	}

	target := profile.AnnualRainfallMM
	soil := normalizeSoil(profile.SoilType)
	group := soilGroup(profile.SoilType)

	tier1 := filterRecords(records, func(r models.AgriculturalRecord) bool {
		return math.Abs(r.AnnualRainfallMM-target) <= p.cfg.Tier1RainfallMM &&
			normalizeSoil(r.SoilType) == soil &&
			r.SuccessRating >= 3
	})
	if len(tier1) >= p.cfg.MinCandidates {
		return MatchResult{Tier: TierStrictMatch, Candidates: tier1}
	}

	tier2 := filterRecords(records, func(r models.AgriculturalRecord) bool {
		return math.Abs(r.AnnualRainfallMM-target) <= p.cfg.Tier2RainfallMM &&
			normalizeSoil(r.SoilType) == soil &&
			r.SuccessRating >= 3
	})
	if len(tier2) >= p.cfg.MinCandidates {
		return MatchResult{Tier: TierRelaxedRain, Candidates: tier2}
	}

	tier3 := filterRecords(records, func(r models.AgriculturalRecord) bool {
		return math.Abs(r.AnnualRainfallMM-target) <= p.cfg.Tier2RainfallMM &&
			soilInGroup(r.SoilType, group) &&
			r.SuccessRating >= 3
	})
	if len(tier3) >= p.cfg.MinCandidates {
		return MatchResult{Tier: TierSimilarSoil, Candidates: tier3}
	}

	tier4 := filterRecords(records, func(r models.AgriculturalRecord) bool {
		return math.Abs(r.AnnualRainfallMM-target) <= p.cfg.Tier4RainfallMM &&
			r.SuccessRating >= 4
	})
	if len(tier4) > 0 {
		return MatchResult{Tier: TierVeryRelaxed, Candidates: tier4}
	}

	tier5 := filterRecords(records, func(r models.AgriculturalRecord) bool {
		return r.SuccessRating >= 4
	})
	if len(tier5) > 0 {
		// Stable sort keeps source order for equal ratings.
		sort.SliceStable(tier5, func(i, j int) bool {
			return tier5[i].SuccessRating > tier5[j].SuccessRating
		})
		if len(tier5) > p.cfg.Tier5Cap {
			tier5 = tier5[:p.cfg.Tier5Cap]
		}
		return MatchResult{Tier: TierTopPerformers, Candidates: tier5}
	}

	return MatchResult{Tier: TierBuiltinDefault}
}

func filterRecords(records []models.AgriculturalRecord, keep func(models.AgriculturalRecord) bool) []models.AgriculturalRecord {
	var out []models.AgriculturalRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// PredictOptimalCrops returns the ranked crop recommendations for the
// profile. Under the ladder policy it always returns at least one
// recommendation; under the strict policy it returns ErrInsufficientData
// when fewer candidates than the minimum survive the fixed window.
func (p *PredictorService) PredictOptimalCrops(profile models.VillageProfile) ([]models.CropRecommendation, error) {
	p.EnrichProfile(&profile)

	if p.cfg.Policy == PolicyStrict {
		return p.predictStrict(profile)
	}

	result := p.matchCandidates(profile)
	if result.Tier == TierBuiltinDefault {
		return DefaultRecommendations(), nil
	}

	recommendations := p.scoreCandidates(result.Candidates, profile)
	if len(recommendations) == 0 {
		return DefaultRecommendations(), nil
	}
	return recommendations, nil
}

// predictStrict is the single fixed-tolerance variant over the crop trial
// dataset: no relaxation, fail outright below the minimum.
func (p *PredictorService) predictStrict(profile models.VillageProfile) ([]models.CropRecommendation, error) {
	trials := p.store.CropTrials()
	target := profile.AnnualRainfallMM

	var candidates []models.CropTrialRecord
	for _, t := range trials {
		if math.Abs(t.RainfallMM-target) > p.cfg.StrictRainfallMM {
			continue
		}
		if t.Temperature < p.cfg.StrictTempMinC || t.Temperature > p.cfg.StrictTempMaxC {
			continue
		}
		if t.PH < p.cfg.StrictPHMin || t.PH > p.cfg.StrictPHMax {
			continue
		}
		candidates = append(candidates, t)
	}

	if len(candidates) < p.cfg.MinCandidates {
		return nil, fmt.Errorf("%w: %d crop trial(s) within ±%.0fmm of %.0fmm rainfall, need %d",
			ErrInsufficientData, len(candidates), p.cfg.StrictRainfallMM, target, p.cfg.MinCandidates)
	}

	return p.scoreTrialCandidates(candidates, profile), nil
}

// DefaultRecommendations is the hard built-in Tier 6 list, returned
// whenever the store is empty or no record survives any tier. It bypasses
// the scorer entirely; the field values are fixed.
func DefaultRecommendations() []models.CropRecommendation {
	return []models.CropRecommendation{
		{
			Crop:               "Rice",
			PlantingWindow:     "June-July",
			IrrigationSchedule: "Irrigation every 2-3 days",
			ExpectedYieldGain:  "10-20%",
			RiskLevel:          "Medium",
		},
		{
			Crop:               "Wheat",
			PlantingWindow:     "November-December",
			IrrigationSchedule: "Weekly irrigation",
			ExpectedYieldGain:  "10-20%",
			RiskLevel:          "Medium",
		},
		{
			Crop:               "Maize",
			PlantingWindow:     "June-July",
			IrrigationSchedule: "Weekly irrigation",
			ExpectedYieldGain:  "5-15%",
			RiskLevel:          "Low",
		},
	}
}
