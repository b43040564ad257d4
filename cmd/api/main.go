package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"gocausal/adapters/api"
	"gocausal/app"
	"gocausal/internal"
	"gocausal/internal/config"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := internal.NewDefaultLogger()

	pipeline, err := app.Run(cfg, log)
	if err != nil {
		log.Error("pipeline run failed: %v", err)
		os.Exit(1)
	}

	server := api.NewServer(api.Config{Port: cfg.Server.Port}, pipeline, log)
	if err := server.Start(); err != nil {
		log.Error("server failed: %v", err)
		os.Exit(1)
	}
}
