package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/jobchanges/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DataPath, convey.ShouldEqual, "data/livedata-weekly-job-changes-2025-07-23.csv")
			convey.So(cfg.TopN, convey.ShouldEqual, 5)
			convey.So(cfg.MaxTopN, convey.ShouldEqual, 100)
			convey.So(cfg.TargetYear, convey.ShouldEqual, 2025)
			convey.So(cfg.WatchData, convey.ShouldBeTrue)
			convey.So(cfg.ReloadDebounce(), convey.ShouldEqual, 500*time.Millisecond)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"empty data path":   func(c *config.Config) { c.DataPath = "" },
			"zero top_n":        func(c *config.Config) { c.TopN = 0 },
			"top_n above max":   func(c *config.Config) { c.TopN = c.MaxTopN + 1 },
			"zero max_top_n":    func(c *config.Config) { c.MaxTopN = 0 },
			"year zero":         func(c *config.Config) { c.TargetYear = 0 },
			"year too large":    func(c *config.Config) { c.TargetYear = 10000 },
			"negative debounce": func(c *config.Config) { c.ReloadDebounceMS = -1 },
			"bad log format":    func(c *config.Config) { c.LogFormat = "xml" },
		}

		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
