package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigWiring(t *testing.T) {
	t.Setenv("LAUREL_ADDR", ":8088")
	t.Setenv("LAUREL_QUEUE_SIZE", "16")
	t.Setenv("LAUREL_WORKER_COUNT", "2")

	convey.Convey("Given configuration from the environment", t, func() {
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8088")

		convey.Convey("Then the service picks it up", func() {
			svc := app.New(app.WithConfig(cfg))
			convey.So(svc.GetStats()["queueSize"], convey.ShouldEqual, 16)
			convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 2)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the process mux over a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(4))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the landing page, docs and API are all served", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/v1/readiness").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the readiness gauges are exported after a refresh", func() {
			updateSystemMetrics()
			updateServiceMetrics(ctx, svc)
			body := get("/healthz").Body.String()
			convey.So(strings.Contains(body, "laurel_"), convey.ShouldBeTrue)
		})

		convey.Convey("Then unknown paths are not found", func() {
			convey.So(get("/missing").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given cancelled contexts", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the updaters return", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then refreshing a stopped service is a no-op", func() {
			convey.So(func() { updateServiceMetrics(context.Background(), app.New()) }, convey.ShouldNotPanic)
		})
	})
}
