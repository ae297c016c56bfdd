package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pcdmatch/internal/adapters/repository"
	service "github.com/okian/pcdmatch/internal/app"
	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/config"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/types"
	"github.com/okian/pcdmatch/internal/seed"
	"github.com/okian/pcdmatch/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// seededDSN migrates and seeds a fresh SQLite file with the demo dataset.
func seededDSN(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "service.db") + "?_pragma=foreign_keys(1)"

	store, err := repository.Open(ctx, repository.DriverSQLite, dsn, repository.WithMaxOpenConns(1))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := seed.Apply(ctx, store.DB(), seed.Demo()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dsn
}

func testConfig(dsn string) *config.Config {
	cfg := config.New()
	cfg.Database.DSN = dsn
	cfg.Database.MaxOpenConns = 1
	cfg.Database.Migrate = true
	return cfg
}

func jobIDs(ms []types.Match) []int64 {
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.JobID)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it takes its defaults from the configuration", func() {
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 1)
			So(stats["defaultThreshold"], ShouldEqual, 0.5)
			So(stats["cacheEnabled"], ShouldEqual, false)
		})

		Convey("And matching before Start fails as a dependency error", func() {
			_, err := svc.MatchForCandidate(context.Background(), 1, nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrDependency)
		})
	})

	Convey("Given options and a configuration", t, func() {
		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.DefaultThreshold = 0.3
		svc := service.New(
			service.WithConfig(cfg),
			service.WithWorkerCount(8),
			service.WithDefaultThreshold(0.9),
		)

		Convey("Then options win over the configuration", func() {
			stats := svc.GetStats(context.Background())
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["defaultThreshold"], ShouldEqual, 0.9)
		})
	})
}

func TestService_Matching(t *testing.T) {
	Convey("Given a started service over the demo dataset", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithConfig(testConfig(seededDSN(t))),
			service.WithLogger(logger.Nop()),
			service.WithWorkerCount(4),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Ana is matched to covered jobs, best first", func() {
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateAna), nil)
			So(err, ShouldBeNil)
			So(jobIDs(ms), ShouldResemble, []int64{seed.JobBackend, seed.JobCallCenter, seed.JobSupport})

			backend := ms[0]
			So(backend.AccessibilityMatch.IsCompatible, ShouldBeTrue)
			So(backend.AccessibilityMatch.Coverage, ShouldEqual, 1.0)
			So(backend.TotalScore, ShouldBeGreaterThanOrEqualTo, 65)
			So(backend.TotalScore, ShouldBeGreaterThan, ms[2].TotalScore)
			So(backend.Company, ShouldEqual, "Acme")
			So(backend.Location, ShouldEqual, "Recife - PE")
		})

		Convey("An explicit threshold overrides the default", func() {
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateAna), ptr(0.7))
			So(err, ShouldBeNil)
			So(jobIDs(ms), ShouldResemble, []int64{seed.JobBackend, seed.JobCallCenter})
		})

		Convey("A candidate with no declared accessibility needs gets nothing", func() {
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateBruno), nil)
			So(err, ShouldBeNil)
			So(ms, ShouldNotBeNil)
			So(ms, ShouldBeEmpty)
		})

		Convey("The education gate excludes jobs above the candidate's level", func() {
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateCarla), nil)
			So(err, ShouldBeNil)
			So(jobIDs(ms), ShouldResemble, []int64{seed.JobCallCenter})
		})

		Convey("An inactive candidate is forbidden", func() {
			_, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateDavi), nil)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrForbidden)
		})

		Convey("An unknown candidate is not found", func() {
			_, err := svc.MatchForCandidate(ctx, 999, nil)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrNotFound)
		})

		Convey("Stats report the published catalog", func() {
			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["publishedJobs"], ShouldEqual, 5)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with an unreachable database", t, func() {
		cfg := config.New()
		cfg.Database.Driver = "mysql"
		svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))

		Convey("Start fails and the service stays stopped", func() {
			So(svc.Ready(context.Background()), ShouldNotBeNil)
			err := svc.Start(context.Background())
			So(err, ShouldNotBeNil)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrValidation)
			So(svc.GetStats(context.Background())["started"], ShouldEqual, false)
		})
	})

	Convey("Given an injected store", t, func() {
		ctx := context.Background()
		store, err := repository.Open(ctx, repository.DriverSQLite, seededDSN(t), repository.WithMaxOpenConns(1))
		So(err, ShouldBeNil)
		defer store.Close()

		svc := service.New(service.WithStore(store), service.WithLogger(logger.Nop()))
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		So(svc.Ready(ctx), ShouldBeNil)

		Convey("Stop leaves the store open", func() {
			svc.Stop()
			svc.Stop()
			So(store.Ping(ctx), ShouldBeNil)
			So(errors.Is(svc.Ready(ctx), service.ErrNotStarted), ShouldBeTrue)

			_, err := svc.MatchForCandidate(ctx, 1, nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Cache(t *testing.T) {
	Convey("Given a service with a Redis mapping cache", t, func() {
		ctx := context.Background()
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		svc := service.New(
			service.WithConfig(testConfig(seededDSN(t))),
			service.WithLogger(logger.Nop()),
			service.WithRedis(rdb),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Results match the uncached ranking and the cache is filled", func() {
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateAna), nil)
			So(err, ShouldBeNil)
			So(jobIDs(ms), ShouldResemble, []int64{seed.JobBackend, seed.JobCallCenter, seed.JobSupport})
			So(mr.Exists("pcdmatch:barrier:11:features"), ShouldBeTrue)
			So(svc.GetStats(ctx)["cacheEnabled"], ShouldEqual, true)
		})

		Convey("A Redis outage degrades to the database", func() {
			mr.Close()
			ms, err := svc.MatchForCandidate(ctx, model.CandidateID(seed.CandidateAna), nil)
			So(err, ShouldBeNil)
			So(ms, ShouldHaveLength, 3)
		})
	})
}
