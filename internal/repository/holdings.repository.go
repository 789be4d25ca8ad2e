package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"scanner/internal/domain"
)

// HoldingsRepository reads broker position exports. The export format is
// semicolon-separated with German number formatting (dot thousands
// separator, decimal comma).
type HoldingsRepository interface {
	LoadHoldings() ([]domain.RawHolding, error)
}

type csvHoldingsRepository struct {
	StocksPath string
	CryptoPath string
	Logger     *zap.SugaredLogger
}

func NewCsvHoldingsRepository(stocksPath, cryptoPath string, logger *zap.SugaredLogger) HoldingsRepository {
	return csvHoldingsRepository{
		StocksPath: stocksPath,
		CryptoPath: cryptoPath,
		Logger:     logger,
	}
}

// localeDecimal parses values like "1.234,56" into a decimal.
type localeDecimal struct {
	decimal.Decimal
}

func (d *localeDecimal) UnmarshalCSV(value string) error {
	parsed, err := ParseLocaleDecimal(value)
	if err != nil {
		return err
	}
	d.Decimal = parsed
	return nil
}

// ParseLocaleDecimal converts a German-formatted number string into a
// decimal: thousands dots are stripped, the decimal comma becomes a point.
func ParseLocaleDecimal(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", value, err)
	}
	return parsed, nil
}

type holdingRow struct {
	Name string        `csv:"Name"`
	ISIN string        `csv:"ISIN"`
	WKN  string        `csv:"WKN"`
	Wert localeDecimal `csv:"Wert"`
}

func (r csvHoldingsRepository) LoadHoldings() ([]domain.RawHolding, error) {
	all := []domain.RawHolding{}

	stocks, err := r.loadFile(r.StocksPath, domain.AssetClassStock)
	if err != nil {
		return nil, err
	}
	all = append(all, stocks...)

	crypto, err := r.loadFile(r.CryptoPath, domain.AssetClassCrypto)
	if err != nil {
		return nil, err
	}
	all = append(all, crypto...)

	if len(all) == 0 {
		return nil, fmt.Errorf("no holdings found in %s or %s", r.StocksPath, r.CryptoPath)
	}
	return all, nil
}

// loadFile tolerates a missing file (an account may have no crypto depot)
// but not a malformed one. Rows without a positive value are skipped with a
// log line, not an error.
func (r csvHoldingsRepository) loadFile(path string, class domain.AssetClass) ([]domain.RawHolding, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.Logger.Warnw("holdings file not found, skipping", "path", path, "assetClass", class)
			return nil, nil
		}
		return nil, fmt.Errorf("could not open holdings file %s: %w", path, err)
	}
	defer f.Close()

	rows := []holdingRow{}
	if err := gocsv.UnmarshalCSV(semicolonReader(f), &rows); err != nil {
		return nil, fmt.Errorf("could not parse holdings file %s: %w", path, err)
	}

	holdings := []domain.RawHolding{}
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		if !row.Wert.Decimal.IsPositive() {
			r.Logger.Debugw("skipping holding with non-positive value", "name", name, "value", row.Wert.Decimal)
			continue
		}
		holdings = append(holdings, domain.RawHolding{
			Name:       name,
			ISIN:       strings.TrimSpace(row.ISIN),
			WKN:        strings.TrimSpace(row.WKN),
			AssetClass: class,
			Value:      row.Wert.Decimal,
		})
	}

	r.Logger.Infow("holdings loaded", "path", path, "assetClass", class, "positions", len(holdings))
	return holdings, nil
}

func semicolonReader(in io.Reader) gocsv.CSVReader {
	reader := csv.NewReader(in)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	return reader
}
