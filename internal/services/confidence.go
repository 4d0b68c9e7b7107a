package services

import (
	"fmt"
	"math"
	"strings"

	"advisory-service/internal/models"
)

// Confidence sub-score weights. The three dimensions measure how much
// historical evidence exists for the profile, not how good the matched
// outcomes were.
const (
	rainfallWeight    = 0.60
	soilWeight        = 0.25
	cropHistoryWeight = 0.15
)

// cropCategories is the generic fallback used when none of the village's
// current crops appear in the dataset at all.
var cropCategories = map[string][]string{
	"cereal": {"rice", "wheat", "maize"},
	"cash":   {"cotton", "sugarcane"},
	"pulse":  {"soybean"},
}

// CalculateConfidenceScore blends the three data-sufficiency sub-scores
// into a 0-100 confidence. The ladder policy clamps into
// [ConfidenceFloor, ConfidenceCeil]; the strict policy caps at the ceiling
// but returns ErrInsufficientData instead of clamping a low score up.
func (p *PredictorService) CalculateConfidenceScore(profile models.VillageProfile) (int, error) {
	p.EnrichProfile(&profile)

	if p.cfg.Policy == PolicyStrict {
		return p.calculateStrictConfidence(profile)
	}

	rainfallSub, _ := p.rainfallSubScore(profile.AnnualRainfallMM)
	soilSub := p.soilSubScore(profile.SoilType)
	cropSub := p.cropHistorySubScore(profile.CurrentCrops)

	weighted := rainfallSub*rainfallWeight + soilSub*soilWeight + cropSub*cropHistoryWeight
	confidence := int(math.Round(weighted * 100))

	if confidence < p.cfg.ConfidenceFloor {
		confidence = p.cfg.ConfidenceFloor
	}
	if confidence > p.cfg.ConfidenceCeil {
		confidence = p.cfg.ConfidenceCeil
	}
	return confidence, nil
}

func (p *PredictorService) calculateStrictConfidence(profile models.VillageProfile) (int, error) {
	// No widening under the strict policy: a single fixed window, and the
	// rainfall dimension has a hard minimum of 10 matches.
	rainfallCount := p.countRainfallMatches(profile.AnnualRainfallMM, p.cfg.Tier1RainfallMM)
	if rainfallCount < 10 {
		return 0, fmt.Errorf("%w: only %d record(s) within ±%.0fmm rainfall, need 10",
			ErrInsufficientData, rainfallCount, p.cfg.Tier1RainfallMM)
	}

	rainfallSub := math.Min(float64(rainfallCount)/20, 1)
	soilSub := p.soilSubScore(profile.SoilType)
	cropSub := p.cropHistorySubScore(profile.CurrentCrops)

	weighted := rainfallSub*rainfallWeight + soilSub*soilWeight + cropSub*cropHistoryWeight
	confidence := int(math.Round(weighted * 100))
	if confidence > p.cfg.ConfidenceCeil {
		confidence = p.cfg.ConfidenceCeil
	}
	if confidence < p.cfg.StrictConfidence {
		return 0, fmt.Errorf("%w: confidence %d below the strict minimum of %d",
			ErrInsufficientData, confidence, p.cfg.StrictConfidence)
	}
	return confidence, nil
}

// rainfallSubScore counts records near the target rainfall, widening the
// window twice before giving up: ±200mm, then ±400mm when fewer than 5
// matched, then ±600mm when still fewer than 3.
func (p *PredictorService) rainfallSubScore(target float64) (float64, int) {
	count := p.countRainfallMatches(target, p.cfg.Tier1RainfallMM)
	if count < 5 {
		count = p.countRainfallMatches(target, p.cfg.Tier2RainfallMM)
	}
	if count < 3 {
		count = p.countRainfallMatches(target, p.cfg.Tier4RainfallMM)
	}
	return math.Min(float64(count)/20, 1), count
}

func (p *PredictorService) countRainfallMatches(target, tolerance float64) int {
	count := 0
	for _, r := range p.store.AgriculturalRecords() {
		if math.Abs(r.AnnualRainfallMM-target) <= tolerance {
			count++
		}
	}
	return count
}

// soilSubScore counts exact soil matches, falling back to the similar-soil
// group when no record shares the exact type.
func (p *PredictorService) soilSubScore(soilType string) float64 {
	soil := normalizeSoil(soilType)
	exact := 0
	for _, r := range p.store.AgriculturalRecords() {
		if normalizeSoil(r.SoilType) == soil {
			exact++
		}
	}
	count := exact
	if count == 0 {
		group := soilGroup(soilType)
		for _, r := range p.store.AgriculturalRecords() {
			if soilInGroup(r.SoilType, group) {
				count++
			}
		}
	}
	return math.Min(float64(count)/10, 1)
}

// cropHistorySubScore scores how often the village's current crops appear
// in the dataset: two points per exact match, one per partial (substring
// containment either direction). When nothing matches at all it falls back
// to the category heuristic: +2 baseline per input crop, +3 more when any
// record shares the crop's category.
func (p *PredictorService) cropHistorySubScore(currentCrops []string) float64 {
	records := p.store.AgriculturalRecords()

	total := 0
	for _, crop := range currentCrops {
		needle := strings.ToLower(strings.TrimSpace(crop))
		if needle == "" {
			continue
		}
		for _, r := range records {
			haystack := strings.ToLower(strings.TrimSpace(r.Crop))
			if haystack == needle {
				total += 2
			} else if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
				total++
			}
		}
	}

	if total == 0 && len(currentCrops) > 0 {
		for _, crop := range currentCrops {
			total += 2
			category := cropCategory(crop)
			if category == "" {
				continue
			}
			if p.categoryPresent(category) {
				total += 3
			}
		}
	}

	return math.Min(float64(total)/15, 1)
}

func cropCategory(crop string) string {
	needle := strings.ToLower(strings.TrimSpace(crop))
	for category, members := range cropCategories {
		for _, member := range members {
			if needle == member {
				return category
			}
		}
	}
	return ""
}

func (p *PredictorService) categoryPresent(category string) bool {
	members := cropCategories[category]
	for _, r := range p.store.AgriculturalRecords() {
		recordCrop := strings.ToLower(strings.TrimSpace(r.Crop))
		for _, member := range members {
			if recordCrop == member {
				return true
			}
		}
	}
	return false
}

// ValidatePredictionConfidence returns the confidence together with the
// per-dimension data quality and plain-language caveats for the weak
// dimensions.
func (p *PredictorService) ValidatePredictionConfidence(profile models.VillageProfile) (*models.ConfidenceReport, error) {
	p.EnrichProfile(&profile)

	confidence, err := p.CalculateConfidenceScore(profile)
	if err != nil {
		return nil, err
	}

	rainfallSub, _ := p.rainfallSubScore(profile.AnnualRainfallMM)
	soilSub := p.soilSubScore(profile.SoilType)
	cropSub := p.cropHistorySubScore(profile.CurrentCrops)

	quality := models.DataQuality{
		Rainfall: int(math.Round(rainfallSub * 100)),
		Soil:     int(math.Round(soilSub * 100)),
		Crops:    int(math.Round(cropSub * 100)),
	}

	var advice []string
	if quality.Rainfall < 50 {
		advice = append(advice, "Limited rainfall history near this target; treat irrigation guidance as provisional.")
	}
	if quality.Soil < 50 {
		advice = append(advice, "Few records share this soil type; consider a soil survey before large investments.")
	}
	if quality.Crops < 50 {
		advice = append(advice, "The current crops have little historical precedent here; pilot on a small plot first.")
	}
	if confidence >= 70 {
		advice = append(advice, "Historical coverage is strong; recommendations can be acted on directly.")
	}

	return &models.ConfidenceReport{
		Confidence:       confidence,
		IsHighConfidence: confidence >= 70,
		Recommendations:  advice,
		DataQuality:      quality,
	}, nil
}

// GetHistoricalSuccessRate estimates how often strategies like this one
// worked out historically: records sharing a strategy crop, the exact soil
// type and rainfall within ±300mm. Returns a constant 30 when no record
// qualifies, otherwise a blend of rating and ROI clamped to [25, 90].
func (p *PredictorService) GetHistoricalSuccessRate(strategy models.InvestmentStrategy, profile models.VillageProfile) int {
	p.EnrichProfile(&profile)
	soil := normalizeSoil(profile.SoilType)
	target := profile.AnnualRainfallMM

	var sumRating, sumROI float64
	count := 0
	for _, r := range p.store.AgriculturalRecords() {
		if normalizeSoil(r.SoilType) != soil {
			continue
		}
		if math.Abs(r.AnnualRainfallMM-target) > 300 {
			continue
		}
		if !cropOverlaps(r.Crop, strategy.Crops) {
			continue
		}
		sumRating += r.SuccessRating
		sumROI += r.ROIPercent
		count++
	}

	if count == 0 {
		return 30
	}

	avgRating := sumRating / float64(count)
	avgROI := sumROI / float64(count)
	rate := int(math.Round(avgRating/5*60 + math.Min(avgROI*0.4, 40)))
	if rate < 25 {
		rate = 25
	}
	if rate > 90 {
		rate = 90
	}
	return rate
}

// cropOverlaps reports whether a record crop matches any strategy crop by
// substring containment in either direction.
func cropOverlaps(recordCrop string, strategyCrops []string) bool {
	record := strings.ToLower(strings.TrimSpace(recordCrop))
	if record == "" {
		return false
	}
	for _, crop := range strategyCrops {
		needle := strings.ToLower(strings.TrimSpace(crop))
		if needle == "" {
			continue
		}
		if strings.Contains(record, needle) || strings.Contains(needle, record) {
			return true
		}
	}
	return false
}
