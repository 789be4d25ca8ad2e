package repository

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// SymbolMapRepository loads the manually maintained ISIN -> ticker mapping
// used to resolve holdings that the broker export only identifies by ISIN.
type SymbolMapRepository interface {
	Load() (map[string]string, error)
}

type csvSymbolMapRepository struct {
	Path string
}

func NewCsvSymbolMapRepository(path string) SymbolMapRepository {
	return csvSymbolMapRepository{Path: path}
}

type symbolMapRow struct {
	ISIN   string `csv:"ISIN"`
	Symbol string `csv:"Symbol"`
}

func (r csvSymbolMapRepository) Load() (map[string]string, error) {
	if r.Path == "" {
		return map[string]string{}, nil
	}
	f, err := os.Open(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("could not open symbol map %s: %w", r.Path, err)
	}
	defer f.Close()

	rows := []symbolMapRow{}
	if err := gocsv.UnmarshalCSV(semicolonReader(f), &rows); err != nil {
		return nil, fmt.Errorf("could not parse symbol map %s: %w", r.Path, err)
	}

	out := map[string]string{}
	for _, row := range rows {
		isin := strings.ToUpper(strings.TrimSpace(row.ISIN))
		symbol := strings.TrimSpace(row.Symbol)
		if isin == "" || symbol == "" {
			continue
		}
		out[isin] = symbol
	}
	return out, nil
}
