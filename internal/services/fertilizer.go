package services

import (
	"strings"

	"advisory-service/internal/models"
)

// defaultFertilizers is returned when the fertilizer dataset has nothing
// for the crop or soil at all.
var defaultFertilizers = []string{"Urea", "DAP", "14-35-14"}

// GetFertilizerRecommendations returns up to three fertilizer names for
// the crop and soil, widening from exact crop+soil matches to crop-only,
// then soil-only, before falling back to the generic defaults.
func (p *PredictorService) GetFertilizerRecommendations(cropType, soilType string) []string {
	crop := strings.ToLower(strings.TrimSpace(cropType))
	soil := normalizeSoil(soilType)
	records := p.store.Fertilizers()

	names := collectFertilizers(records, func(r models.FertilizerRecord) bool {
		return strings.ToLower(strings.TrimSpace(r.CropType)) == crop && normalizeSoil(r.SoilType) == soil
	})
	if len(names) == 0 {
		names = collectFertilizers(records, func(r models.FertilizerRecord) bool {
			return strings.ToLower(strings.TrimSpace(r.CropType)) == crop
		})
	}
	if len(names) == 0 {
		names = collectFertilizers(records, func(r models.FertilizerRecord) bool {
			return normalizeSoil(r.SoilType) == soil
		})
	}
	if len(names) == 0 {
		names = defaultFertilizers
	}

	if len(names) > 3 {
		names = names[:3]
	}
	return names
}

// collectFertilizers gathers distinct fertilizer names in source order.
func collectFertilizers(records []models.FertilizerRecord, match func(models.FertilizerRecord) bool) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !match(r) {
			continue
		}
		key := strings.ToLower(r.FertilizerName)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, r.FertilizerName)
	}
	return names
}
