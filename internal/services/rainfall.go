package services

import (
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"advisory-service/internal/models"
)

// EnrichProfile fills a missing annual rainfall target from the nearest
// rainfall station. Profiles that already carry a rainfall figure are left
// untouched.
func (p *PredictorService) EnrichProfile(profile *models.VillageProfile) {
	if profile.AnnualRainfallMM > 0 {
		return
	}
	if annual, ok := p.NearestStationRainfall(profile.Latitude, profile.Longitude); ok {
		profile.AnnualRainfallMM = annual
	}
}

// NearestStationRainfall finds the rainfall station closest to the
// coordinates and returns the mean annual rainfall across that station's
// recorded years.
func (p *PredictorService) NearestStationRainfall(latitude, longitude float64) (float64, bool) {
	records := p.store.Rainfall()
	if len(records) == 0 {
		return 0, false
	}

	here := geom.Coord{longitude, latitude}
	nearest := ""
	nearestDist := -1.0
	for _, r := range records {
		dist := xy.Distance(here, geom.Coord{r.Longitude, r.Latitude})
		if nearestDist < 0 || dist < nearestDist {
			nearestDist = dist
			nearest = r.Subdivision
		}
	}

	var sum float64
	count := 0
	for _, r := range records {
		if strings.EqualFold(r.Subdivision, nearest) {
			sum += r.AnnualMM
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
