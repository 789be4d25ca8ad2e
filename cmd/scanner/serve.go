package main

import (
	"log"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 3009, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) {
	deps, err := initializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	if err := deps.ApiHandler.StartApi(servePort); err != nil {
		log.Fatal(err)
	}
}
