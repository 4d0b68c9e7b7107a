package dataset

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const agriHeader = "state,district,village,latitude,longitude,year,season,crop,area_hectares,soil_type,soil_ph,soil_moisture,annual_rainfall_mm,avg_temperature_c,climate_risk,drought_occurred,flood_occurred,irrigation_type,input_cost,yield_kg_per_hectare,market_price,roi_percent,success_rating,farmer_feedback"

const agriRow = "Maharashtra,Akola,Shivpur,20.7,77.0,2018,kharif,Cotton,2.5,black,6.8,22.5,850,27.4,medium,0,1,drip,42000,2400,5400,38.5,4,good yield this season"

// ============================================================================
// TEST SUITE 1: CSV PARSING
// ============================================================================

func TestParseCSV_ValidAgriculturalRow(t *testing.T) {
	input := agriHeader + "\n" + agriRow + "\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseAgriculturalRow)

	assert.NoError(t, err)
	assert.Equal(t, 0, dropped)
	assert.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Cotton", rec.Crop)
	assert.Equal(t, "black", rec.SoilType)
	assert.Equal(t, 2018, rec.Year)
	assert.Equal(t, 850.0, rec.AnnualRainfallMM)
	assert.Equal(t, 4.0, rec.SuccessRating)
	assert.False(t, rec.DroughtOccurred)
	assert.True(t, rec.FloodOccurred)
	assert.Equal(t, "good yield this season", rec.FarmerFeedback)
}

func TestParseCSV_DropsMalformedRowsAndContinues(t *testing.T) {
	badNumeric := strings.Replace(agriRow, "850", "not-a-number", 1)
	shortRow := "Maharashtra,Akola,Shivpur"
	input := strings.Join([]string{agriHeader, agriRow, badNumeric, shortRow, agriRow}, "\n") + "\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseAgriculturalRow)

	assert.NoError(t, err, "malformed rows must not abort the load")
	assert.Len(t, records, 2)
	assert.Equal(t, 2, dropped)
}

func TestParseCSV_RejectsNonFiniteNumbers(t *testing.T) {
	nanRow := strings.Replace(agriRow, "850", "NaN", 1)
	infRow := strings.Replace(agriRow, "850", "+Inf", 1)
	input := strings.Join([]string{agriHeader, nanRow, infRow}, "\n") + "\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseAgriculturalRow)

	assert.NoError(t, err)
	assert.Empty(t, records, "NaN and Inf parse as floats but are not finite")
	assert.Equal(t, 2, dropped)
}

func TestParseCSV_HeaderOnlyGivesEmptyTable(t *testing.T) {
	records, dropped, err := parseCSV(strings.NewReader(agriHeader+"\n"), parseAgriculturalRow)

	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, dropped)
}

func TestParseCSV_EmptyInputFails(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader(""), parseAgriculturalRow)
	assert.Error(t, err, "a dataset without even a header row is unreadable")
}

func TestParseCropTrialRow(t *testing.T) {
	input := "n,p,k,temperature,humidity,ph,rainfall,label\n90,42,43,20.8,82.0,6.5,202.9,rice\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseCropTrialRow)

	assert.NoError(t, err)
	assert.Equal(t, 0, dropped)
	assert.Len(t, records, 1)
	assert.Equal(t, "rice", records[0].Crop)
	assert.Equal(t, 202.9, records[0].RainfallMM)
	assert.Equal(t, 6.5, records[0].PH)
}

func TestParseFertilizerRow(t *testing.T) {
	input := "temperature,humidity,moisture,soil_type,crop_type,n,k,p,fertilizer_name\n26,52,38,Sandy,Maize,37,0,0,Urea\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseFertilizerRow)

	assert.NoError(t, err)
	assert.Equal(t, 0, dropped)
	assert.Len(t, records, 1)
	assert.Equal(t, "Urea", records[0].FertilizerName)
	assert.Equal(t, "Sandy", records[0].SoilType)
	assert.Equal(t, "Maize", records[0].CropType)
}

func TestParseRainfallRow(t *testing.T) {
	input := "name,subdivision,year,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec,annual,latitude,longitude\n" +
		"Akola,Vidarbha,2018,2.1,0.0,5.5,1.2,10.4,180.3,290.7,240.2,160.8,45.0,12.1,1.7,950.0,20.7,77.0\n"

	records, dropped, err := parseCSV(strings.NewReader(input), parseRainfallRow)

	assert.NoError(t, err)
	assert.Equal(t, 0, dropped)
	assert.Len(t, records, 1)
	assert.Equal(t, "Vidarbha", records[0].Subdivision)
	assert.Equal(t, 950.0, records[0].AnnualMM)
	assert.Equal(t, 290.7, records[0].Monthly[6])
	assert.Equal(t, 20.7, records[0].Latitude)
}

// ============================================================================
// TEST SUITE 2: STORE LOAD
// ============================================================================

// mapSource serves datasets from an in-memory map, standing in for the
// file and MinIO sources.
type mapSource map[string]string

func (m mapSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	content, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such dataset: %s", name)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func testNames() DatasetNames {
	return DatasetNames{
		Agricultural: "agri.csv",
		CropTrials:   "trials.csv",
		Fertilizers:  "fertilizers.csv",
		Rainfall:     "rainfall.csv",
	}
}

func TestLoadAll_PartialFailureLeavesOtherTablesUsable(t *testing.T) {
	source := mapSource{
		"agri.csv": agriHeader + "\n" + agriRow + "\n",
		// trials.csv, fertilizers.csv and rainfall.csv are missing.
	}
	store := NewStore()

	err := store.LoadAll(context.Background(), source, testNames())

	assert.Error(t, err, "missing datasets are reported")
	assert.True(t, store.Loaded(), "the load still completes")
	assert.Len(t, store.AgriculturalRecords(), 1)
	assert.Empty(t, store.CropTrials())
	assert.Empty(t, store.Fertilizers())
	assert.Empty(t, store.Rainfall())
}

func TestLoadAll_AllDatasets(t *testing.T) {
	source := mapSource{
		"agri.csv":        agriHeader + "\n" + agriRow + "\n",
		"trials.csv":      "n,p,k,temperature,humidity,ph,rainfall,label\n90,42,43,20.8,82.0,6.5,202.9,rice\n",
		"fertilizers.csv": "temperature,humidity,moisture,soil_type,crop_type,n,k,p,fertilizer_name\n26,52,38,Sandy,Maize,37,0,0,Urea\n",
		"rainfall.csv": "name,subdivision,year,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec,annual,latitude,longitude\n" +
			"Akola,Vidarbha,2018,2.1,0.0,5.5,1.2,10.4,180.3,290.7,240.2,160.8,45.0,12.1,1.7,950.0,20.7,77.0\n",
	}
	store := NewStore()

	err := store.LoadAll(context.Background(), source, testNames())

	assert.NoError(t, err)
	counts := store.Counts()
	assert.Equal(t, 1, counts["agricultural_records"])
	assert.Equal(t, 1, counts["crop_trials"])
	assert.Equal(t, 1, counts["fertilizers"])
	assert.Equal(t, 1, counts["rainfall_records"])
}

func TestStore_EmptyBeforeLoad(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Loaded())
	assert.Empty(t, store.AgriculturalRecords(), "queries racing the load must see empty tables")
	assert.Empty(t, store.CropTrials())
}
