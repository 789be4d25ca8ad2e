package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"scanner/internal/domain"
)

type scanResponseRow struct {
	Symbol                 string                     `json:"symbol"`
	AssetClass             domain.AssetClass          `json:"assetClass"`
	FinalScore             *float64                   `json:"finalScore"`
	OpportunityScore       float64                    `json:"opportunityScore"`
	RiskScore              float64                    `json:"riskScore"`
	ConfidenceScore        float64                    `json:"confidenceScore"`
	ConfidenceLabel        string                     `json:"confidenceLabel"`
	ConfidenceBreakdown    domain.ConfidenceBreakdown `json:"confidenceBreakdown"`
	DiversificationPenalty float64                    `json:"diversificationPenalty"`
	Status                 domain.ScoreStatus         `json:"status"`
	Error                  string                     `json:"error,omitempty"`
}

type scanResponse struct {
	RunID   string            `json:"runId"`
	Regimes map[string]string `json:"regimes"`
	Results []scanResponseRow `json:"results"`
}

func (m ApiHandler) scan(ctx *gin.Context) {
	scan, err := m.ScanHandler.Scan(ctx.Request.Context())
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to scan universe: %w", err), ctx)
		return
	}

	out := scanResponse{
		RunID:   scan.RunID.String(),
		Regimes: map[string]string{},
		Results: make([]scanResponseRow, 0, len(scan.Results)),
	}
	for class, regime := range scan.Regimes {
		out.Regimes[string(class)] = string(regime.Regime)
	}
	for _, res := range scan.Results {
		out.Results = append(out.Results, scanResponseRow{
			Symbol:                 res.Symbol,
			AssetClass:             res.Meta.AssetClass,
			FinalScore:             res.FinalScore,
			OpportunityScore:       res.OpportunityScore,
			RiskScore:              res.RiskScore,
			ConfidenceScore:        res.ConfidenceScore,
			ConfidenceLabel:        res.ConfidenceLabel,
			ConfidenceBreakdown:    res.ConfidenceBreakdown,
			DiversificationPenalty: res.DiversificationPenalty,
			Status:                 res.Status,
			Error:                  res.Err,
		})
	}

	ctx.JSON(200, out)
}
