package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"win-predictor/internal/config"
	"win-predictor/internal/riot"
)

// keycheck validates the configured RIOT_API_KEY and exits nonzero when the
// key is rejected, so scripts can fail fast before starting an analysis.
func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	client, err := riot.NewClient(cfg.RiotAPIKey, riot.WithContinent(cfg.Continent))
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	valid, err := client.ValidateKey(ctx)
	if err != nil {
		fmt.Printf("Could not determine key validity: %v\n", err)
		os.Exit(2)
	}
	if !valid {
		fmt.Println("API key was rejected (expired or revoked)")
		os.Exit(1)
	}

	fmt.Println("API key is valid")
}
