package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"advisory-service/internal/models"
)

// rowParser converts one delimited row into a typed record. A non-nil error
// drops the row without aborting the load.
type rowParser[T any] func(fields []string) (T, error)

// parseCSV reads header-prefixed comma-delimited data. The header is used
// only to validate the column count of each row; lookup is positional.
func parseCSV[T any](r io.Reader, parse rowParser[T]) ([]T, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header row: %w", err)
	}
	columns := len(header)

	var records []T
	dropped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			dropped++
			continue
		}
		if len(row) != columns {
			dropped++
			continue
		}
		record, err := parse(row)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped, nil
}

// parseFinite parses a float and rejects NaN and infinities, which
// strconv.ParseFloat would otherwise accept.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func parseAgriculturalRow(fields []string) (models.AgriculturalRecord, error) {
	var rec models.AgriculturalRecord
	if len(fields) != 24 {
		return rec, fmt.Errorf("expected 24 columns, got %d", len(fields))
	}

	rec.State = strings.TrimSpace(fields[0])
	rec.District = strings.TrimSpace(fields[1])
	rec.Village = strings.TrimSpace(fields[2])
	rec.Season = strings.TrimSpace(fields[6])
	rec.Crop = strings.TrimSpace(fields[7])
	rec.SoilType = strings.TrimSpace(fields[9])
	rec.ClimateRisk = strings.TrimSpace(fields[14])
	rec.DroughtOccurred = parseFlag(fields[15])
	rec.FloodOccurred = parseFlag(fields[16])
	rec.IrrigationType = strings.TrimSpace(fields[17])
	rec.FarmerFeedback = strings.TrimSpace(fields[23])

	if rec.Crop == "" {
		return rec, fmt.Errorf("missing crop name")
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields[5]))
	if err != nil {
		return rec, fmt.Errorf("year: %w", err)
	}
	rec.Year = year

	numeric := []struct {
		idx  int
		dest *float64
	}{
		{3, &rec.Latitude},
		{4, &rec.Longitude},
		{8, &rec.AreaHectares},
		{10, &rec.SoilPH},
		{11, &rec.SoilMoisture},
		{12, &rec.AnnualRainfallMM},
		{13, &rec.AvgTemperatureC},
		{18, &rec.InputCost},
		{19, &rec.YieldKgPerHa},
		{20, &rec.MarketPrice},
		{21, &rec.ROIPercent},
		{22, &rec.SuccessRating},
	}
	for _, field := range numeric {
		f, err := parseFinite(fields[field.idx])
		if err != nil {
			return rec, fmt.Errorf("column %d: %w", field.idx, err)
		}
		*field.dest = f
	}
	return rec, nil
}

func parseCropTrialRow(fields []string) (models.CropTrialRecord, error) {
	var rec models.CropTrialRecord
	if len(fields) != 8 {
		return rec, fmt.Errorf("expected 8 columns, got %d", len(fields))
	}

	rec.Crop = strings.TrimSpace(fields[7])
	if rec.Crop == "" {
		return rec, fmt.Errorf("missing crop label")
	}

	numeric := []struct {
		idx  int
		dest *float64
	}{
		{0, &rec.Nitrogen},
		{1, &rec.Phosphorus},
		{2, &rec.Potassium},
		{3, &rec.Temperature},
		{4, &rec.Humidity},
		{5, &rec.PH},
		{6, &rec.RainfallMM},
	}
	for _, field := range numeric {
		f, err := parseFinite(fields[field.idx])
		if err != nil {
			return rec, fmt.Errorf("column %d: %w", field.idx, err)
		}
		*field.dest = f
	}
	return rec, nil
}

func parseFertilizerRow(fields []string) (models.FertilizerRecord, error) {
	var rec models.FertilizerRecord
	if len(fields) != 9 {
		return rec, fmt.Errorf("expected 9 columns, got %d", len(fields))
	}

	rec.SoilType = strings.TrimSpace(fields[3])
	rec.CropType = strings.TrimSpace(fields[4])
	rec.FertilizerName = strings.TrimSpace(fields[8])
	if rec.FertilizerName == "" {
		return rec, fmt.Errorf("missing fertilizer name")
	}

	numeric := []struct {
		idx  int
		dest *float64
	}{
		{0, &rec.Temperature},
		{1, &rec.Humidity},
		{2, &rec.Moisture},
		{5, &rec.Nitrogen},
		{6, &rec.Potassium},
		{7, &rec.Phosphorus},
	}
	for _, field := range numeric {
		f, err := parseFinite(fields[field.idx])
		if err != nil {
			return rec, fmt.Errorf("column %d: %w", field.idx, err)
		}
		*field.dest = f
	}
	return rec, nil
}

func parseRainfallRow(fields []string) (models.RainfallRecord, error) {
	var rec models.RainfallRecord
	if len(fields) != 18 {
		return rec, fmt.Errorf("expected 18 columns, got %d", len(fields))
	}

	rec.Name = strings.TrimSpace(fields[0])
	rec.Subdivision = strings.TrimSpace(fields[1])

	year, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return rec, fmt.Errorf("year: %w", err)
	}
	rec.Year = year

	for month := 0; month < 12; month++ {
		f, err := parseFinite(fields[3+month])
		if err != nil {
			return rec, fmt.Errorf("month %d: %w", month+1, err)
		}
		rec.Monthly[month] = f
	}

	annual, err := parseFinite(fields[15])
	if err != nil {
		return rec, fmt.Errorf("annual: %w", err)
	}
	rec.AnnualMM = annual

	lat, err := parseFinite(fields[16])
	if err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseFinite(fields[17])
	if err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}
	rec.Latitude = lat
	rec.Longitude = lon
	return rec, nil
}
