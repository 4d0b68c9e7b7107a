package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"advisory-service/internal/models"
)

// Store holds the parsed historical datasets in memory. Tables are written
// exactly once by LoadAll and only read afterwards; the mutex exists so a
// query arriving before the load finishes sees empty tables instead of a
// torn write.
type Store struct {
	mu          sync.RWMutex
	agriRecords []models.AgriculturalRecord
	cropTrials  []models.CropTrialRecord
	fertilizers []models.FertilizerRecord
	rainfall    []models.RainfallRecord
	loaded      bool
}

// Source resolves a dataset name to a readable stream. Implemented by the
// local file source and the MinIO bucket source.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

func NewStore() *Store {
	return &Store{}
}

// LoadAll fetches and parses every dataset from the source. A dataset that
// fails to open is left empty and the load continues; the queries are
// defined over whatever subset made it in.
func (s *Store) LoadAll(ctx context.Context, src Source, names DatasetNames) error {
	var loadErrs []error

	agri := loadDataset(ctx, src, names.Agricultural, parseAgriculturalRow, &loadErrs)
	trials := loadDataset(ctx, src, names.CropTrials, parseCropTrialRow, &loadErrs)
	ferts := loadDataset(ctx, src, names.Fertilizers, parseFertilizerRow, &loadErrs)
	rain := loadDataset(ctx, src, names.Rainfall, parseRainfallRow, &loadErrs)

	s.mu.Lock()
	s.agriRecords = agri
	s.cropTrials = trials
	s.fertilizers = ferts
	s.rainfall = rain
	s.loaded = true
	s.mu.Unlock()

	slog.Info("Dataset load finished",
		"agricultural_records", len(agri),
		"crop_trials", len(trials),
		"fertilizers", len(ferts),
		"rainfall_records", len(rain),
		"failed_datasets", len(loadErrs))

	if len(loadErrs) > 0 {
		return fmt.Errorf("%d dataset(s) failed to load: %v", len(loadErrs), loadErrs)
	}
	return nil
}

// DatasetNames carries the per-type source names (file paths or object keys).
type DatasetNames struct {
	Agricultural string
	CropTrials   string
	Fertilizers  string
	Rainfall     string
}

func loadDataset[T any](ctx context.Context, src Source, name string, parse rowParser[T], loadErrs *[]error) []T {
	rc, err := src.Open(ctx, name)
	if err != nil {
		slog.Warn("Dataset unavailable, leaving table empty", "dataset", name, "error", err)
		*loadErrs = append(*loadErrs, fmt.Errorf("%s: %w", name, err))
		return nil
	}
	defer rc.Close()

	records, dropped, err := parseCSV(rc, parse)
	if err != nil {
		slog.Warn("Dataset unreadable, leaving table empty", "dataset", name, "error", err)
		*loadErrs = append(*loadErrs, fmt.Errorf("%s: %w", name, err))
		return nil
	}
	if dropped > 0 {
		slog.Warn("Dropped malformed rows during load", "dataset", name, "dropped", dropped, "kept", len(records))
	}
	return records
}

// Loaded reports whether LoadAll has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// AgriculturalRecords returns the agricultural survey table. The returned
// slice must not be mutated.
func (s *Store) AgriculturalRecords() []models.AgriculturalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agriRecords
}

func (s *Store) CropTrials() []models.CropTrialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cropTrials
}

func (s *Store) Fertilizers() []models.FertilizerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fertilizers
}

func (s *Store) Rainfall() []models.RainfallRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rainfall
}

// Counts returns per-table row counts for the status endpoint.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"agricultural_records": len(s.agriRecords),
		"crop_trials":          len(s.cropTrials),
		"fertilizers":          len(s.fertilizers),
		"rainfall_records":     len(s.rainfall),
	}
}

// SetAgriculturalRecords replaces the agricultural table. Test hook; the
// service never mutates a store after load.
func (s *Store) SetAgriculturalRecords(records []models.AgriculturalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agriRecords = records
	s.loaded = true
}

func (s *Store) SetCropTrials(records []models.CropTrialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cropTrials = records
	s.loaded = true
}

func (s *Store) SetFertilizers(records []models.FertilizerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fertilizers = records
	s.loaded = true
}

func (s *Store) SetRainfall(records []models.RainfallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rainfall = records
	s.loaded = true
}
