package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"win-predictor/internal/config"
	"win-predictor/internal/features"
	"win-predictor/internal/pipeline"
	"win-predictor/internal/riot"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			break
		}
	}

	riotID := flag.String("riot-id", "", "Riot ID in format 'GameName#TagLine'")
	count := flag.Int("count", 0, "Number of recent matches to analyze (1-100)")
	topN := flag.Int("top", 0, "Number of champion scenarios to predict")
	seed := flag.Int64("seed", 0, "Random seed for reproducible training")
	testFraction := flag.Float64("test-fraction", 0, "Fraction of matches held out for evaluation")
	skipKeyCheck := flag.Bool("skip-key-check", false, "Skip API key validation at startup")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *riotID == "" {
		fmt.Println("Usage:")
		fmt.Println("  analyzer --riot-id='Player#NA1' [--count=20] [--top=3] [--seed=42]")
		fmt.Println()
		fmt.Println("RIOT_API_KEY must be set via .env or the environment.")
		os.Exit(1)
	}

	parts := strings.SplitN(*riotID, "#", 2)
	if len(parts) != 2 {
		log.Fatalf("Invalid Riot ID format. Expected 'GameName#TagLine', got: %s", *riotID)
	}
	gameName, tagLine := parts[0], parts[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Flags override env defaults.
	if *count > 0 {
		cfg.MatchCount = *count
	}
	if *topN > 0 {
		cfg.TopScenarios = *topN
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *testFraction > 0 {
		cfg.TestFraction = *testFraction
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	client, err := riot.NewClient(cfg.RiotAPIKey,
		riot.WithContinent(cfg.Continent),
		riot.WithRequestInterval(cfg.RequestInterval),
		riot.WithRetryPolicy(cfg.MaxRetryAttempts, cfg.RetryBackoffBase),
		riot.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Abort between matches on Ctrl-C; an in-flight request finishes first.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n[Shutdown] Stopping after the current request...")
		cancel()
	}()

	if !*skipKeyCheck {
		valid, err := client.ValidateKey(ctx)
		if err != nil {
			logger.Warn("could not validate API key, continuing anyway", zap.Error(err))
		} else if !valid {
			log.Fatal("RIOT_API_KEY was rejected by the Riot API - check that the key is current")
		}
	}

	progress := func(stage string, done, total int) {
		fmt.Printf("\r%-24s %d/%d", stage, done, total)
		if done >= total {
			fmt.Println()
		}
	}

	analyzer := pipeline.New(client, logger, progress)

	result, err := analyzer.Run(ctx, gameName, tagLine, pipeline.Options{
		MatchCount:   cfg.MatchCount,
		TopN:         cfg.TopScenarios,
		Seed:         cfg.Seed,
		TestFraction: cfg.TestFraction,
	})
	if err != nil {
		// Show how far the analysis got before the failure.
		if result != nil && result.Table != nil {
			fmt.Printf("\nProcessed %d matches (%d skipped, %d fetch failures) before failing\n",
				result.Table.Len(), result.SkippedMatches, len(result.FetchWarnings))
		}
		log.Fatalf("Analysis failed: %v", err)
	}

	printResult(result)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func printResult(res *pipeline.Result) {
	fmt.Printf("\n=== Analysis: %s#%s ===\n", res.Identity.GameName, res.Identity.TagLine)
	fmt.Printf("Matches analyzed: %d (%d skipped, %d fetch failures)\n",
		res.Table.Len(), res.SkippedMatches, len(res.FetchWarnings))
	for _, w := range res.FetchWarnings {
		fmt.Printf("  warning: %s: %v\n", w.MatchID, w.Err)
	}

	fmt.Println("\n--- Win rate by champion ---")
	for _, s := range features.WinRateByChampion(res.Table) {
		fmt.Printf("  %-16s %2d games  %2d wins  %5.1f%%\n", s.Champion, s.Games, s.Wins, s.WinRate*100)
	}

	fmt.Println("\n--- Role distribution ---")
	for _, r := range features.RoleDistribution(res.Table) {
		fmt.Printf("  %-8s %d games\n", r.Role, r.Games)
	}

	m := res.Metrics
	fmt.Println("\n--- Model evaluation ---")
	fmt.Printf("  Train/test split: %d/%d\n", m.TrainRows, m.TestRows)
	fmt.Printf("  Confusion matrix: TP=%d FP=%d TN=%d FN=%d\n",
		m.TruePositives, m.FalsePositives, m.TrueNegatives, m.FalseNegatives)
	fmt.Printf("  Accuracy: %.3f  Precision: %.3f  Recall: %.3f  F1: %.3f\n",
		m.Accuracy, m.Precision, m.Recall, m.F1)

	fmt.Println("\n--- Win probability for most-played champions ---")
	for _, s := range res.Scenarios {
		fmt.Printf("  %-16s %-8s %5.1f%%  (avg KDA %.2f, avg %.0f min, %d games on pair)\n",
			s.Champion, s.Role, s.WinProbability*100, s.KDA, s.DurationMin, s.Games)
	}
}
