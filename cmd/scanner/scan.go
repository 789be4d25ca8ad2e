package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"scanner/internal"
	"scanner/internal/domain"
)

var scanJson bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score the universe and print the ranked results",
	Run:   runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJson, "json", false, "emit raw results as JSON")
}

func runScan(cmd *cobra.Command, args []string) {
	deps, err := initializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	scan, err := deps.ApiHandler.ScanHandler.Scan(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	if scanJson {
		internal.Pprint(scan.Results)
		return
	}

	stockRegime := scan.Regimes[domain.AssetClassStock]
	cryptoRegime := scan.Regimes[domain.AssetClassCrypto]
	fmt.Printf("run %s | stocks: %s (%s) | crypto: %s (%s)\n\n",
		scan.RunID,
		stockRegime.Regime, stockRegime.Benchmark,
		cryptoRegime.Regime, cryptoRegime.Benchmark,
	)

	fmt.Printf("%-4s %-10s %-7s %7s %7s %7s %6s %-6s %s\n",
		"#", "symbol", "class", "score", "opp", "risk", "conf", "label", "status")
	for i, res := range scan.Results {
		score := "-"
		if res.FinalScore != nil {
			score = fmt.Sprintf("%.2f", *res.FinalScore)
		}
		fmt.Printf("%-4d %-10s %-7s %7s %7.1f %7.1f %6.1f %-6s %s\n",
			i+1,
			res.Symbol,
			res.Meta.AssetClass,
			score,
			res.OpportunityScore,
			res.RiskScore,
			res.ConfidenceScore,
			res.ConfidenceLabel,
			res.Status,
		)
	}
}
