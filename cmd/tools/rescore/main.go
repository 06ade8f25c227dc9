// cmd/tools/rescore/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"recruitflow/internal/common/config"
	"recruitflow/internal/common/database"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/models"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/scoring"
	"recruitflow/internal/store"
)

// rescore re-runs the AI evaluation for stored candidates, for example after
// a vacancy's thresholds or agent changed. It writes scores directly through
// the pipeline service; no notifications are sent.
func main() {
	vacancyID := flag.String("vacancy", "", "Re-score only candidates of this vacancy (default: all)")
	onlyUnscored := flag.Bool("only-unscored", false, "Skip candidates that already have a score")
	dryRun := flag.Bool("dry-run", false, "List the candidates that would be re-scored without scoring them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres connection failed: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres ping failed: %v\n", err)
		os.Exit(1)
	}

	recordStore := store.NewPostgresStore(pg.DB)

	var provider scoring.Provider
	if cfg.Scoring.APIKey != "" {
		generator, err := scoring.NewGenerator(ctx, cfg.Scoring.APIKey, cfg.Scoring.Model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scoring client init failed: %v\n", err)
			os.Exit(1)
		}
		provider = scoring.NewGeminiProvider(generator, time.Duration(cfg.Scoring.Timeout)*time.Millisecond, log)
	} else {
		fmt.Fprintln(os.Stderr, "warning: no scoring API key configured, all evaluations will be degraded")
		provider = scoring.NewUnconfiguredProvider(log)
	}

	svc := pipeline.NewService(recordStore, provider, noopNotifier{}, nil, nil, nil, log)

	candidates, err := recordStore.ListCandidates(ctx, *vacancyID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list candidates failed: %v\n", err)
		os.Exit(1)
	}

	var scored, skipped, failed int
	for _, candidate := range candidates {
		if candidate.CVText == "" {
			skipped++
			continue
		}
		if *onlyUnscored && candidate.AIScore != nil {
			skipped++
			continue
		}
		if *dryRun {
			fmt.Printf("would re-score %s (%s)\n", candidate.ID, candidate.Name)
			scored++
			continue
		}

		result, err := svc.Evaluate(ctx, candidate.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evaluate %s failed: %v\n", candidate.ID, err)
			failed++
			continue
		}
		fmt.Printf("%s: score=%d classification=%s degraded=%v\n",
			candidate.ID, result.Score, result.Classification, result.Degraded)
		scored++
	}

	fmt.Printf("\ndone: %d scored, %d skipped, %d failed\n", scored, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// noopNotifier satisfies the pipeline's notifier dependency; rescoring never
// sends messages.
type noopNotifier struct{}

func (noopNotifier) StatusChanged(context.Context, *models.Candidate, string, models.Status, models.Status) {
}

func (noopNotifier) SendAdHoc(context.Context, *models.Candidate, string, string) ([]models.SendResult, error) {
	return nil, nil
}
