// Package main is the entry point for the reqbridge bot.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/reqbridge/reqbridge/cmd"
	"github.com/reqbridge/reqbridge/internal/logging"
)

// main executes the root command and handles any errors that occur.
func main() {
	// A .env file is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logging.Info("starting reqbridge", "version", "1.0.0", "log_level", logLevel)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
