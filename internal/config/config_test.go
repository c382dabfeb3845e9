package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/laurel/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "")
			convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.15)
			convey.So(cfg.NearlyReadyRate, convey.ShouldEqual, 0.5)
			convey.So(cfg.ReadyRate, convey.ShouldEqual, 1.0)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"zero threshold":     func(c *config.Config) { c.MatchThreshold = 0 },
			"threshold above 1":  func(c *config.Config) { c.MatchThreshold = 1.2 },
			"ready above 1":      func(c *config.Config) { c.ReadyRate = 1.5 },
			"nearly above ready": func(c *config.Config) { c.NearlyReadyRate, c.ReadyRate = 0.9, 0.8 },
			"zero workers":       func(c *config.Config) { c.WorkerCount = 0 },
			"negative queue":     func(c *config.Config) { c.QueueSize = -1 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}
