package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"scanner/internal/domain"
	l3_service "scanner/internal/service/l3"
)

func (m ApiHandler) portfolio(ctx *gin.Context) {
	scan, err := m.ScanHandler.Scan(ctx.Request.Context())
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to scan universe: %w", err), ctx)
		return
	}

	target, err := m.RebalanceHandler.PortfolioService.Build(l3_service.BuildPortfolioInput{
		Universe:    scan.Universe,
		Scores:      scan.Results,
		StockRegime: scan.Regimes[domain.AssetClassStock],
		Config:      m.RebalanceHandler.Settings.Portfolio,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to build portfolio: %w", err), ctx)
		return
	}

	ctx.JSON(200, target)
}
