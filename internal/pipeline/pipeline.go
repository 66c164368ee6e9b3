// Package pipeline wires the fetch, feature-building, training and
// prediction stages into one linear analysis run per player. It is
// single-threaded by design: the only suspension point is the rate limiter
// inside the riot client.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"win-predictor/internal/features"
	"win-predictor/internal/model"
	"win-predictor/internal/riot"
)

// Stage names passed to the progress callback.
const (
	StageResolve  = "resolving player"
	StageListIDs  = "listing matches"
	StageFetch    = "fetching matches"
	StageFeatures = "building feature table"
	StageTrain    = "training model"
	StagePredict  = "predicting scenarios"
)

// ProgressFunc receives stage updates so the display layer can render a
// progress bar. It is called per match during the fetch stage, which means
// partial progress is visible even when the run ultimately fails.
type ProgressFunc func(stage string, done, total int)

// FetchWarning records a non-fatal per-match fetch failure. The match is
// skipped; the warning travels to the display layer.
type FetchWarning struct {
	MatchID string
	Err     error
}

// Options are the collaborator-supplied knobs for one analysis run.
type Options struct {
	MatchCount   int     // requested history size, clamped by the client
	TopN         int     // scenario count, default 3
	Seed         int64   // reproducibility seed, default 42
	TestFraction float64 // evaluation split, default 0.2
}

// Result is the full output bundle for the display layer. When Run returns
// an error the Result is still returned with whatever stages completed, so
// partial progress can be shown.
type Result struct {
	Identity       *riot.Identity
	Table          *features.Table
	SkippedMatches int            // matches where the player was absent/unparseable
	FetchWarnings  []FetchWarning // matches that failed to fetch
	Model          *model.TrainedModel
	Metrics        *model.Metrics
	Scenarios      []model.Scenario
}

// Analyzer runs analyses against one riot client. Like the client itself it
// is not meant to be shared across concurrent requests.
type Analyzer struct {
	client   *riot.Client
	log      *zap.Logger
	progress ProgressFunc
}

// New creates an Analyzer. progress may be nil.
func New(client *riot.Client, log *zap.Logger, progress ProgressFunc) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	if progress == nil {
		progress = func(string, int, int) {}
	}
	return &Analyzer{client: client, log: log, progress: progress}
}

// Run executes the whole pipeline for one Riot ID: resolve identity, list
// recent match ids, fetch each match (skipping per-match failures), build
// the feature table, train, evaluate and predict.
func (a *Analyzer) Run(ctx context.Context, name, tag string, opts Options) (*Result, error) {
	res := &Result{}

	a.progress(StageResolve, 0, 1)
	identity, err := a.client.ResolveIdentity(ctx, name, tag)
	if err != nil {
		return res, fmt.Errorf("resolve %s#%s: %w", name, tag, err)
	}
	res.Identity = identity
	a.progress(StageResolve, 1, 1)
	a.log.Info("resolved player",
		zap.String("gameName", identity.GameName),
		zap.String("tagLine", identity.TagLine))

	a.progress(StageListIDs, 0, 1)
	matchIDs, err := a.client.ListRecentMatchIDs(ctx, identity.PUUID, opts.MatchCount)
	if err != nil {
		return res, fmt.Errorf("list matches: %w", err)
	}
	a.progress(StageListIDs, 1, 1)
	a.log.Info("listed match history", zap.Int("matches", len(matchIDs)))

	matches := make([]*riot.Match, 0, len(matchIDs))
	for i, id := range matchIDs {
		// A caller-level abort takes effect between matches, never mid-fetch.
		if err := ctx.Err(); err != nil {
			return res, err
		}

		m, err := a.client.FetchMatch(ctx, id)
		if err != nil {
			a.log.Warn("skipping match", zap.String("matchID", id), zap.Error(err))
			res.FetchWarnings = append(res.FetchWarnings, FetchWarning{MatchID: id, Err: err})
		} else {
			matches = append(matches, m)
		}
		a.progress(StageFetch, i+1, len(matchIDs))
	}

	if len(matchIDs) > 0 && len(matches) == 0 {
		return res, &model.InsufficientDataError{
			Reason: fmt.Sprintf("all %d match fetches failed", len(matchIDs)),
		}
	}

	a.progress(StageFeatures, 0, 1)
	table, skipped := features.BuildTable(identity, matches)
	res.Table = table
	res.SkippedMatches = skipped
	a.progress(StageFeatures, 1, 1)
	a.log.Info("built feature table",
		zap.Int("rows", table.Len()),
		zap.Int("skipped", skipped))

	a.progress(StageTrain, 0, 1)
	trained, metrics, err := model.Train(table, model.TrainOptions{
		TestFraction: opts.TestFraction,
		Seed:         opts.Seed,
	})
	if err != nil {
		return res, fmt.Errorf("train model: %w", err)
	}
	res.Model = trained
	res.Metrics = metrics
	a.progress(StageTrain, 1, 1)
	a.log.Info("trained model",
		zap.Int("trainRows", metrics.TrainRows),
		zap.Int("testRows", metrics.TestRows),
		zap.Float64("accuracy", metrics.Accuracy))

	a.progress(StagePredict, 0, 1)
	scenarios, err := model.PredictTopScenarios(trained, table, opts.TopN)
	if err != nil {
		return res, fmt.Errorf("predict scenarios: %w", err)
	}
	res.Scenarios = scenarios
	a.progress(StagePredict, 1, 1)

	return res, nil
}
