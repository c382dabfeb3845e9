package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/internal/adapters/sqlitedb"
	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service built from configuration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		path := filepath.Join(t.TempDir(), "laurel.db")
		db, err := sqlitedb.Open(ctx, path)
		So(err, ShouldBeNil)
		src := content.NewSQLiteSource(db)
		So(src.Put(ctx, draft(model.KindDocument, "1", "New pioneering research approach")), ShouldBeNil)
		So(src.Put(ctx, draft(model.KindEvent, "2", "community outreach volunteer")), ShouldBeNil)
		So(db.Close(), ShouldBeNil)

		cfg := config.New(ctx)
		cfg.DBPath = path
		cfg.WorkerCount = 3
		cfg.QueueSize = 16
		cfg.DedupeSize = 8

		svc := service.New(service.WithConfig(cfg))
		defer svc.Stop()

		Convey("When it starts", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the configured sizes and storage are in effect", func() {
				stats := svc.GetStats()
				So(stats["workerCount"], ShouldEqual, 3)
				So(stats["queueSize"], ShouldEqual, 16)
				So(stats["dedupeSize"], ShouldEqual, 8)
				So(stats["storage"], ShouldEqual, "sqlite")
			})
		})

		Convey("When an async submission is processed end to end", func() {
			So(svc.Start(ctx), ShouldBeNil)
			sub, err := svc.SubmitContentAnalysis(ctx, model.KindDocument, "1")
			So(err, ShouldBeNil)
			So(sub.RequestID, ShouldNotBeEmpty)

			Convey("Then the matching criterion is eventually persisted", func() {
				So(eventually(func() bool {
					st, err := svc.GetCriterionState(ctx, "emerging", "Innovation")
					return err == nil && st.Satisfied
				}), ShouldBeTrue)
			})
		})

		Convey("When the same instance is stopped and started again", func() {
			So(svc.Start(ctx), ShouldBeNil)
			_, err := svc.UpdateCriterionStatus(ctx, "global", "Empower Changemakers", true)
			So(err, ShouldBeNil)
			svc.Stop()
			So(svc.GetStats()["started"], ShouldBeFalse)

			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it reopens the database and keeps the override", func() {
				st, err := svc.GetCriterionState(ctx, "global", "Empower Changemakers")
				So(err, ShouldBeNil)
				So(st.Override, ShouldBeTrue)
				So(st.Satisfied, ShouldBeTrue)

				res, err := svc.AnalyzeSingleContent(ctx, model.KindEvent, "2")
				So(err, ShouldBeNil)
				So(res.ConfidenceScore, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}
