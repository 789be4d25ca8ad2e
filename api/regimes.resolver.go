package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"scanner/internal/domain"
)

type regimeResponseRow struct {
	AssetClass string   `json:"assetClass"`
	Benchmark  string   `json:"benchmark"`
	Regime     string   `json:"regime"`
	Trend200   *float64 `json:"trend200"`
}

func (m ApiHandler) regimes(ctx *gin.Context) {
	regimes, err := m.ScanHandler.BenchmarkService.GetRegimes([]domain.AssetClass{
		domain.AssetClassStock,
		domain.AssetClassCrypto,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to classify regimes: %w", err), ctx)
		return
	}

	out := make([]regimeResponseRow, 0, len(regimes))
	for _, regime := range regimes {
		out = append(out, regimeResponseRow{
			AssetClass: string(regime.AssetClass),
			Benchmark:  regime.Benchmark,
			Regime:     string(regime.Regime),
			Trend200:   regime.Trend200,
		})
	}

	ctx.JSON(200, out)
}
