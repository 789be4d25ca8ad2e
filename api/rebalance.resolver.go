package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"scanner/internal/app"
	"scanner/internal/domain"
)

type rebalanceResponse struct {
	Plan      *domain.RebalancePlan      `json:"plan"`
	Target    *domain.Portfolio          `json:"target"`
	Unmatched []domain.UnmatchedHolding  `json:"unmatched"`
	Summary   string                     `json:"summary"`
}

func (m ApiHandler) rebalance(ctx *gin.Context) {
	result, err := m.RebalanceHandler.Rebalance(ctx.Request.Context())
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to rebalance: %w", err), ctx)
		return
	}

	ctx.JSON(200, rebalanceResponse{
		Plan:      result.Plan,
		Target:    result.Target,
		Unmatched: result.Unmatched,
		Summary:   app.FormatPlanSummary(result),
	})
}
