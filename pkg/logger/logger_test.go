package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/pcdmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with each supported format", func() {
			So(logger.Init(), ShouldBeNil)
			So(logger.Get(), ShouldNotBeNil)
			So(logger.InitWithFormat("json"), ShouldBeNil)
			So(logger.Named("engine"), ShouldNotBeNil)
			So(logger.Sync(), ShouldBeNil)
		})

		Convey("When initialized with an unknown format", func() {
			So(logger.InitWithFormat("xml"), ShouldNotBeNil)
		})
	})
}

func TestJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		So(logger.SetLevelString("info"), ShouldBeNil)
		var buf bytes.Buffer
		log, err := logger.New(&buf, logger.FormatJSON)
		So(err, ShouldBeNil)

		Convey("When a record with fields is written", func() {
			log.Named("matching").Info(context.Background(), "matched",
				logger.Int64("candidate_id", 7),
				logger.Int("included", 2),
				logger.Bool("cached", true),
				logger.Error(errors.New("boom")),
			)

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)

			Convey("Then fields, name and source are present", func() {
				So(rec["msg"], ShouldEqual, "matched")
				So(rec["logger"], ShouldEqual, "matching")
				So(rec["candidate_id"], ShouldEqual, 7.0)
				So(rec["included"], ShouldEqual, 2.0)
				So(rec["cached"], ShouldEqual, true)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go:")
			})
		})

		Convey("When the record is below the configured level", func() {
			log.Debug(context.Background(), "hidden")
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "", "warning", "warn", "error"} {
			So(logger.SetLevelString(lvl), ShouldBeNil)
		}
		So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		So(logger.SetLevelString("info"), ShouldBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		So(func() { logger.Nop().Error(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
