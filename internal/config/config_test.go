package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pcdmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DefaultThreshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
			convey.So(cfg.SubtypeFallback, convey.ShouldBeTrue)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Database.Driver, convey.ShouldEqual, "sqlite")
			convey.So(cfg.Redis.Enabled(), convey.ShouldBeFalse)
			convey.So(cfg.Redis.TTL(), convey.ShouldEqual, 10*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad value each", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":           func(c *config.Config) { c.Addr = " " },
			"threshold above one":  func(c *config.Config) { c.DefaultThreshold = 1.5 },
			"negative threshold":   func(c *config.Config) { c.DefaultThreshold = -0.1 },
			"no workers":           func(c *config.Config) { c.WorkerCount = 0 },
			"no timeout":           func(c *config.Config) { c.RequestTimeoutMS = 0 },
			"unknown driver":       func(c *config.Config) { c.Database.Driver = "mysql" },
			"empty dsn":            func(c *config.Config) { c.Database.DSN = "" },
			"bad refresh schedule": func(c *config.Config) { c.Redis.URL = "redis://localhost:6379"; c.Redis.RefreshSpec = "sometimes" },
			"negative ttl":         func(c *config.Config) { c.Redis.URL = "redis://localhost:6379"; c.Redis.TTLSeconds = -1 },
		}

		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When the cache is disabled its schedule is not checked", func() {
			cfg := config.New()
			cfg.Redis.RefreshSpec = "sometimes"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
