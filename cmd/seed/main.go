package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/pcdmatch/internal/adapters/repository"
	"github.com/okian/pcdmatch/internal/seed"
	"github.com/okian/pcdmatch/pkg/logger"
)

// Default configuration constants.
const (
	defaultDSN       = "file:pcdmatch.db?_pragma=foreign_keys(1)"
	defaultURL       = "http://localhost:9080"
	defaultTimeout   = 10 * time.Second
	defaultRunBudget = time.Minute
)

func main() {
	var (
		driver    = flag.String("driver", repository.DriverSQLite, "Database driver: sqlite or pgx")
		dsn       = flag.String("dsn", defaultDSN, "Database DSN")
		probe     = flag.Bool("probe", false, "Fetch matches from a running service after seeding")
		baseURL   = flag.String("url", defaultURL, "Base URL of the service, used with -probe")
		candidate = flag.Int64("candidate", seed.CandidateAna, "Candidate id to probe")
		threshold = flag.Float64("threshold", -1, "Threshold in [0, 1] to probe with; negative uses the service default")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunBudget)
	defer cancel()

	store, err := repository.Open(ctx, *driver, *dsn, repository.WithLogger(log))
	if err != nil {
		log.Error(ctx, "open database failed", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Error(ctx, "migrate failed", logger.Error(err))
		os.Exit(1)
	}
	d := seed.Demo()
	if err := seed.Apply(ctx, store.DB(), d); err != nil {
		log.Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "demo dataset applied",
		logger.String("driver", *driver),
		logger.Int("candidates", len(d.Candidates)),
		logger.Int("jobs", len(d.Jobs)),
	)

	if !*probe {
		return
	}
	ms, err := seed.NewProbeClient(*baseURL, defaultTimeout).Matches(ctx, *candidate, *threshold)
	if err != nil {
		log.Error(ctx, "probe failed", logger.Error(err))
		os.Exit(1)
	}
	os.Stdout.WriteString(seed.FormatMatches(ms))
}

func showHelp() {
	os.Stdout.WriteString(`pcdmatch seed tool
==================

Creates the schema, loads the demo dataset and optionally queries a running
service for one candidate's matches.

Usage:
  go run ./cmd/seed [options]

Options:
  -driver string     Database driver: sqlite or pgx (default "sqlite")
  -dsn string        Database DSN (default "file:pcdmatch.db?_pragma=foreign_keys(1)")
  -probe             Fetch matches from a running service after seeding
  -url string        Base URL of the service (default "http://localhost:9080")
  -candidate int     Candidate id to probe (default 1)
  -threshold float   Threshold in [0, 1]; negative uses the service default (default -1)
  -help              Show this help message

Examples:
  # Seed a local SQLite file
  go run ./cmd/seed

  # Seed PostgreSQL and probe candidate 3 at 70%
  go run ./cmd/seed -driver pgx -dsn postgres://localhost/pcdmatch -probe -candidate 3 -threshold 0.7
`)
}
