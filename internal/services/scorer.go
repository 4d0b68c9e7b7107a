package services

import (
	"math"
	"sort"
	"strings"

	"advisory-service/internal/models"
)

// seasonWindows maps a record's season label to the planting window shown
// to the user. Anything unrecognized (zaid, summer, blanks) falls back to
// the zaid window.
var seasonWindows = map[string]string{
	"kharif": "June-July",
	"rabi":   "November-December",
	"zaid":   "March-April",
}

const defaultPlantingWindow = "March-April"

// cropSeasons assigns a season to crops from the trial dataset, which has
// no season column of its own. Used by the strict policy only.
var cropSeasons = map[string]string{
	"rice":    "kharif",
	"maize":   "kharif",
	"cotton":  "kharif",
	"soybean": "kharif",
	"jowar":   "kharif",
	"wheat":   "rabi",
	"mustard": "rabi",
	"gram":    "rabi",
	"barley":  "rabi",
}

// cropAggregate accumulates the per-crop averages the ranking works on.
type cropAggregate struct {
	crop         string
	count        int
	sumYield     float64
	sumROI       float64
	sumRating    float64
	sumRainfall  float64
	sumAbsDev    float64
	seasonCounts map[string]int
	seasonOrder  []string
	totalScore   float64
}

func (a *cropAggregate) avgYield() float64     { return a.sumYield / float64(a.count) }
func (a *cropAggregate) avgROI() float64       { return a.sumROI / float64(a.count) }
func (a *cropAggregate) avgRating() float64    { return a.sumRating / float64(a.count) }
func (a *cropAggregate) meanRainfall() float64 { return a.sumRainfall / float64(a.count) }
func (a *cropAggregate) meanAbsDev() float64   { return a.sumAbsDev / float64(a.count) }

// majoritySeason picks the most frequent season among the crop's matched
// records; first-seen wins a tie so the result is stable.
func (a *cropAggregate) majoritySeason() string {
	best := ""
	bestCount := 0
	for _, season := range a.seasonOrder {
		if a.seasonCounts[season] > bestCount {
			best = season
			bestCount = a.seasonCounts[season]
		}
	}
	return best
}

// scoreCandidates groups the matched records by crop, computes the
// weighted total score per crop and returns the top three as
// recommendations. Grouping and sorting both preserve source order for
// ties, so the output is deterministic for a fixed store.
func (p *PredictorService) scoreCandidates(candidates []models.AgriculturalRecord, profile models.VillageProfile) []models.CropRecommendation {
	target := profile.AnnualRainfallMM

	byCrop := make(map[string]*cropAggregate)
	var order []string
	for _, r := range candidates {
		key := strings.ToLower(strings.TrimSpace(r.Crop))
		agg, ok := byCrop[key]
		if !ok {
			agg = &cropAggregate{crop: r.Crop, seasonCounts: make(map[string]int)}
			byCrop[key] = agg
			order = append(order, key)
		}
		agg.count++
		agg.sumYield += r.YieldKgPerHa
		agg.sumROI += r.ROIPercent
		agg.sumRating += r.SuccessRating
		agg.sumRainfall += r.AnnualRainfallMM
		agg.sumAbsDev += math.Abs(r.AnnualRainfallMM - target)

		season := strings.ToLower(strings.TrimSpace(r.Season))
		if _, seen := agg.seasonCounts[season]; !seen {
			agg.seasonOrder = append(agg.seasonOrder, season)
		}
		agg.seasonCounts[season]++
	}

	aggregates := make([]*cropAggregate, 0, len(order))
	for _, key := range order {
		agg := byCrop[key]
		rainfallScore := 100 - math.Min(agg.meanAbsDev(), 100)
		agg.totalScore = agg.avgRating()*20 + agg.avgROI()*0.5 + rainfallScore*0.3
		aggregates = append(aggregates, agg)
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].totalScore > aggregates[j].totalScore
	})
	if len(aggregates) > 3 {
		aggregates = aggregates[:3]
	}

	recommendations := make([]models.CropRecommendation, 0, len(aggregates))
	for _, agg := range aggregates {
		recommendations = append(recommendations, models.CropRecommendation{
			Crop:               agg.crop,
			PlantingWindow:     plantingWindow(agg.majoritySeason()),
			IrrigationSchedule: irrigationSchedule(agg.meanRainfall() - target),
			ExpectedYieldGain:  yieldGainBand(agg.avgYield()),
			RiskLevel:          riskLevel(agg.meanAbsDev(), target, agg.avgRating()),
		})
	}
	return recommendations
}

// scoreTrialCandidates ranks strict-policy candidates. The trial dataset
// has no yield, ROI or rating columns, so crops rank by match frequency
// and the yield band is read off the evidence volume.
func (p *PredictorService) scoreTrialCandidates(candidates []models.CropTrialRecord, profile models.VillageProfile) []models.CropRecommendation {
	target := profile.AnnualRainfallMM

	type trialAggregate struct {
		crop        string
		count       int
		sumRainfall float64
		sumAbsDev   float64
	}

	byCrop := make(map[string]*trialAggregate)
	var order []string
	for _, t := range candidates {
		key := strings.ToLower(strings.TrimSpace(t.Crop))
		agg, ok := byCrop[key]
		if !ok {
			agg = &trialAggregate{crop: t.Crop}
			byCrop[key] = agg
			order = append(order, key)
		}
		agg.count++
		agg.sumRainfall += t.RainfallMM
		agg.sumAbsDev += math.Abs(t.RainfallMM - target)
	}

	aggregates := make([]*trialAggregate, 0, len(order))
	for _, key := range order {
		aggregates = append(aggregates, byCrop[key])
	}
	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].count > aggregates[j].count
	})
	if len(aggregates) > 3 {
		aggregates = aggregates[:3]
	}

	recommendations := make([]models.CropRecommendation, 0, len(aggregates))
	for _, agg := range aggregates {
		meanRainfall := agg.sumRainfall / float64(agg.count)
		meanAbsDev := agg.sumAbsDev / float64(agg.count)

		var gain string
		switch {
		case agg.count >= 10:
			gain = "15-25%"
		case agg.count >= 5:
			gain = "10-20%"
		default:
			gain = "5-15%"
		}

		relDev := relativeDeviation(meanAbsDev, target)
		risk := "High"
		if relDev < 0.2 {
			risk = "Low"
		} else if relDev < 0.4 {
			risk = "Medium"
		}

		recommendations = append(recommendations, models.CropRecommendation{
			Crop:               agg.crop,
			PlantingWindow:     plantingWindow(cropSeasons[strings.ToLower(agg.crop)]),
			IrrigationSchedule: irrigationSchedule(meanRainfall - target),
			ExpectedYieldGain:  gain,
			RiskLevel:          risk,
		})
	}
	return recommendations
}

func plantingWindow(season string) string {
	if window, ok := seasonWindows[season]; ok {
		return window
	}
	return defaultPlantingWindow
}

// irrigationSchedule derives the schedule from the rainfall deficit: how
// much more rain the matched records received than the village gets.
func irrigationSchedule(deficit float64) string {
	switch {
	case deficit > 200:
		return "Daily irrigation required"
	case deficit > 100:
		return "Irrigation every 2-3 days"
	case deficit > 0:
		return "Weekly irrigation"
	default:
		return "Minimal irrigation needed"
	}
}

func yieldGainBand(avgYield float64) string {
	switch {
	case avgYield > 4000:
		return "20-30%"
	case avgYield > 3000:
		return "15-25%"
	case avgYield > 2000:
		return "10-20%"
	default:
		return "5-15%"
	}
}

func relativeDeviation(meanAbsDev, target float64) float64 {
	if target <= 0 {
		return 1
	}
	return meanAbsDev / target
}

func riskLevel(meanAbsDev, target, avgRating float64) string {
	relDev := relativeDeviation(meanAbsDev, target)
	switch {
	case relDev < 0.2 && avgRating >= 4:
		return "Low"
	case relDev < 0.4 && avgRating >= 3:
		return "Medium"
	default:
		return "High"
	}
}
