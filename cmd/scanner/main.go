package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Asset scanner: regime-aware scoring, portfolio targets and rebalance plans",
}

var (
	settingsPath  string
	universePath  string
	stocksPath    string
	cryptoPath    string
	symbolMapPath string
	withSnapshots bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "JSON settings file overriding the built-in defaults")
	rootCmd.PersistentFlags().StringVar(&universePath, "universe", "universe.csv", "universe CSV produced by the data collector")
	rootCmd.PersistentFlags().StringVar(&stocksPath, "stocks", "holdings-stocks.csv", "broker stock holdings export")
	rootCmd.PersistentFlags().StringVar(&cryptoPath, "crypto", "holdings-crypto.csv", "broker crypto holdings export")
	rootCmd.PersistentFlags().StringVar(&symbolMapPath, "symbol-map", "symbol-map.csv", "ISIN to ticker mapping CSV")
	rootCmd.PersistentFlags().BoolVar(&withSnapshots, "snapshots", false, "persist score history to postgres")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(rebalanceCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
