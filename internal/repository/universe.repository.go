package repository

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"scanner/internal/domain"
)

// UniverseRepository loads and persists the asset universe. The CSV layout
// is an implementation detail of this boundary: the core only ever sees
// typed AssetRecords, mapped once at ingestion.
type UniverseRepository interface {
	Load() ([]domain.AssetRecord, error)
	Save(records []domain.AssetRecord) error
}

type csvUniverseRepository struct {
	Path string
}

func NewCsvUniverseRepository(path string) UniverseRepository {
	return csvUniverseRepository{Path: path}
}

func (r csvUniverseRepository) Load() ([]domain.AssetRecord, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open universe file %s: %w", r.Path, err)
	}
	defer f.Close()

	records := []domain.AssetRecord{}
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("could not parse universe file %s: %w", r.Path, err)
	}
	return records, nil
}

func (r csvUniverseRepository) Save(records []domain.AssetRecord) error {
	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("could not create universe file %s: %w", r.Path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("could not write universe file %s: %w", r.Path, err)
	}
	return nil
}
