package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"scanner/internal/app"
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Build a target portfolio and diff it against broker holdings",
	Run:   runRebalance,
}

func runRebalance(cmd *cobra.Command, args []string) {
	deps, err := initializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	result, err := deps.ApiHandler.RebalanceHandler.Rebalance(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(app.FormatPlanSummary(result))
}
