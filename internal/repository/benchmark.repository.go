package repository

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// BenchmarkRepository provides daily close history for a benchmark symbol,
// oldest first.
type BenchmarkRepository interface {
	DailyCloses(symbol string, lookbackDays int) ([]float64, error)
}

type yahooBenchmarkRepository struct{}

func NewYahooBenchmarkRepository() BenchmarkRepository {
	return yahooBenchmarkRepository{}
}

func (yahooBenchmarkRepository) DailyCloses(symbol string, lookbackDays int) ([]float64, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	closes := []float64{}
	for iter.Next() {
		closes = append(closes, iter.Bar().AdjClose.InexactFloat64())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get benchmark history for %s: %w", symbol, err)
	}

	return closes, nil
}
