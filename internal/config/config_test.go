package config_test

import (
	"testing"
	"time"

	"github.com/okian/transcript/internal/config"
	"github.com/okian/transcript/internal/probe"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.BaseURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.TimeoutMS, convey.ShouldEqual, 0)
			convey.So(cfg.Timeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.RequestID, convey.ShouldBeTrue)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Output, convey.ShouldEqual, config.OutputTable)
			convey.So(cfg.ProbeWorkers, convey.ShouldEqual, probe.DefaultWorkers)
			convey.So(cfg.ProbeRequests, convey.ShouldEqual, probe.DefaultRequests)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
