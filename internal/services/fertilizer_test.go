package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"advisory-service/internal/dataset"
	"advisory-service/internal/models"
)

func newFertilizerPredictor(records []models.FertilizerRecord) *PredictorService {
	store := dataset.NewStore()
	store.SetFertilizers(records)
	return NewPredictorService(store, ladderConfig())
}

func TestGetFertilizerRecommendations_ExactCropAndSoil(t *testing.T) {
	predictor := newFertilizerPredictor([]models.FertilizerRecord{
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "14-35-14"},
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "Urea"},
		{CropType: "Cotton", SoilType: "Red", FertilizerName: "28-28"},
		{CropType: "Wheat", SoilType: "Black", FertilizerName: "DAP"},
	})

	fertilizers := predictor.GetFertilizerRecommendations("cotton", "black_soil")

	assert.Equal(t, []string{"14-35-14", "Urea"}, fertilizers,
		"exact crop+soil matches win and keep source order")
}

func TestGetFertilizerRecommendations_WidensToCropOnly(t *testing.T) {
	predictor := newFertilizerPredictor([]models.FertilizerRecord{
		{CropType: "Cotton", SoilType: "Red", FertilizerName: "28-28"},
		{CropType: "Wheat", SoilType: "Black", FertilizerName: "DAP"},
	})

	fertilizers := predictor.GetFertilizerRecommendations("cotton", "black")

	assert.Equal(t, []string{"28-28"}, fertilizers)
}

func TestGetFertilizerRecommendations_Deduplicates(t *testing.T) {
	predictor := newFertilizerPredictor([]models.FertilizerRecord{
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "Urea"},
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "urea"},
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "DAP"},
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "14-35-14"},
		{CropType: "Cotton", SoilType: "Black", FertilizerName: "28-28"},
	})

	fertilizers := predictor.GetFertilizerRecommendations("cotton", "black")

	assert.Equal(t, []string{"Urea", "DAP", "14-35-14"}, fertilizers,
		"duplicates collapse and the list caps at three")
}

func TestGetFertilizerRecommendations_EmptyDatasetUsesDefaults(t *testing.T) {
	predictor := newFertilizerPredictor(nil)

	fertilizers := predictor.GetFertilizerRecommendations("cotton", "black")

	assert.Equal(t, []string{"Urea", "DAP", "14-35-14"}, fertilizers)
}

// ============================================================================
// NEAREST RAINFALL STATION
// ============================================================================

func TestNearestStationRainfall_PicksClosestAndAveragesYears(t *testing.T) {
	store := dataset.NewStore()
	store.SetRainfall([]models.RainfallRecord{
		{Subdivision: "Vidarbha", Year: 2018, AnnualMM: 950, Latitude: 20.7, Longitude: 77.0},
		{Subdivision: "Vidarbha", Year: 2019, AnnualMM: 1050, Latitude: 20.7, Longitude: 77.0},
		{Subdivision: "Konkan", Year: 2018, AnnualMM: 2900, Latitude: 17.0, Longitude: 73.3},
	})
	predictor := NewPredictorService(store, ladderConfig())

	annual, ok := predictor.NearestStationRainfall(20.5, 77.2)

	assert.True(t, ok)
	assert.InDelta(t, 1000, annual, 0.001, "both Vidarbha years average to 1000mm")
}

func TestEnrichProfile_FillsMissingRainfall(t *testing.T) {
	store := dataset.NewStore()
	store.SetRainfall([]models.RainfallRecord{
		{Subdivision: "Vidarbha", Year: 2018, AnnualMM: 950, Latitude: 20.7, Longitude: 77.0},
	})
	predictor := NewPredictorService(store, ladderConfig())

	profile := models.VillageProfile{Latitude: 20.5, Longitude: 77.2}
	predictor.EnrichProfile(&profile)

	assert.Equal(t, 950.0, profile.AnnualRainfallMM)
}

func TestEnrichProfile_KeepsExplicitRainfall(t *testing.T) {
	store := dataset.NewStore()
	store.SetRainfall([]models.RainfallRecord{
		{Subdivision: "Vidarbha", Year: 2018, AnnualMM: 950, Latitude: 20.7, Longitude: 77.0},
	})
	predictor := NewPredictorService(store, ladderConfig())

	profile := models.VillageProfile{Latitude: 20.5, Longitude: 77.2, AnnualRainfallMM: 1200}
	predictor.EnrichProfile(&profile)

	assert.Equal(t, 1200.0, profile.AnnualRainfallMM, "an explicit rainfall target is never overwritten")
}

func TestNearestStationRainfall_EmptyDataset(t *testing.T) {
	predictor := newLadderPredictor(nil)

	_, ok := predictor.NearestStationRainfall(20.5, 77.2)

	assert.False(t, ok)
}
