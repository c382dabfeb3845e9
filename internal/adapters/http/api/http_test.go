package api_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/internal/adapters/export"
	"github.com/okian/laurel/internal/adapters/http/api"
	"github.com/okian/laurel/internal/adapters/mq/queue"
	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ackBody struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

// stubSubmitter overrides async submission on top of a real service.
type stubSubmitter struct {
	api.Dependencies
	sub types.Submission
	err error
}

func (s *stubSubmitter) SubmitContentAnalysis(context.Context, model.ContentKind, string) (types.Submission, error) {
	return s.sub, s.err
}

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.NewDecoder(w.Body).Decode(&v), ShouldBeNil)
	return v
}

func startService(ctx context.Context) *service.Service {
	src := content.NewMemorySource()
	now := time.Now()
	So(src.Put(ctx, content.Draft{Kind: model.KindDocument, ID: "1", Title: "New pioneering research approach", CreatedAt: now}), ShouldBeNil)
	So(src.Put(ctx, content.Draft{Kind: model.KindEvent, ID: "7", Title: "Community volunteer engagement day", CreatedAt: now}), ShouldBeNil)
	svc := service.New(service.WithContentSource(src), service.WithWorkerCount(1), service.WithQueueSize(4))
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestServer_Register(t *testing.T) {
	Convey("Given a server over a started service", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("Then health serves the metrics registry", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats report the running service", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats["started"], ShouldEqual, true)
			So(stats["storage"], ShouldEqual, "memory")
		})

		Convey("Then unknown routes are not found", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a wrong method is rejected", func() {
			So(do(mux, http.MethodGet, "/v1/analyze", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then a nil mux panics", func() {
			So(func() { api.NewServer(svc, svc).Register(ctx, nil) }, ShouldPanic)
		})
	})
}

func TestAnalyzeHandler(t *testing.T) {
	Convey("Given a server over a started service", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("When analyzing a matching document", func() {
			w := do(mux, http.MethodPost, "/v1/analyze", `{"content_type":"document","content_id":"1"}`)

			Convey("Then the result lists the supported award", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				res := decode[types.AnalysisResult](w)
				So(res.Content, ShouldResemble, model.ContentRef{Kind: model.KindDocument, ID: "1"})
				So(res.ConfidenceScore, ShouldEqual, 17)
				found := false
				for _, a := range res.SupportedAwards {
					if a.AwardKey == "emerging" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When the content type uses the short spelling", func() {
			w := do(mux, http.MethodPost, "/v1/analyze", `{"content_type":"doc","content_id":"1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/v1/analyze", `{broken`)

			Convey("Then it is a validation error", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "bad_request")
				So(body.Kind, ShouldEqual, "validation")
			})
		})

		Convey("When the body is empty", func() {
			So(do(mux, http.MethodPost, "/v1/analyze", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			So(do(mux, http.MethodPost, "/v1/analyze", `{"content_type":"document"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the content type is unknown", func() {
			So(do(mux, http.MethodPost, "/v1/analyze", `{"content_type":"memo","content_id":"1"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the content does not exist", func() {
			w := do(mux, http.MethodPost, "/v1/analyze", `{"content_type":"event","content_id":"404"}`)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode[errorBody](w)
				So(body.Kind, ShouldEqual, "not_found")
			})
		})

		Convey("When analyzing the whole corpus", func() {
			w := do(mux, http.MethodPost, "/v1/analyze/all", "")

			Convey("Then totals and the breakdown are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				res := decode[types.BatchAnalysisResult](w)
				So(res.TotalDocuments, ShouldEqual, 1)
				So(res.TotalEvents, ShouldEqual, 1)
				So(res.RunID, ShouldNotBeEmpty)
				So(len(res.AwardBreakdown), ShouldEqual, 5)
			})
		})

		Convey("When submitting for async analysis", func() {
			w := do(mux, http.MethodPost, "/v1/analyze/async", `{"content_type":"event","content_id":"7"}`)

			Convey("Then it is accepted with a request id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				ack := decode[ackBody](w)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.RequestID, ShouldNotBeEmpty)
				So(ack.Duplicate, ShouldBeFalse)
			})
		})
	})

	Convey("Given a submitter that collapses or rejects requests", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()
		stub := &stubSubmitter{Dependencies: svc}
		mux := newMux(stub, svc)
		body := `{"content_type":"document","content_id":"1"}`

		Convey("When the item is already pending", func() {
			stub.sub = types.Submission{Content: model.ContentRef{Kind: model.KindDocument, ID: "1"}, Duplicate: true}
			w := do(mux, http.MethodPost, "/v1/analyze/async", body)

			Convey("Then it is acknowledged as a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				ack := decode[ackBody](w)
				So(ack.Status, ShouldEqual, "duplicate")
				So(ack.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When the queue is full", func() {
			stub.err = errkind.Wrap("service.submit_content_analysis", queue.ErrQueueFull)
			w := do(mux, http.MethodPost, "/v1/analyze/async", body)

			Convey("Then it reports backpressure", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode[errorBody](w).Code, ShouldEqual, "backpressure")
			})
		})
	})
}

func TestChecklistHandler(t *testing.T) {
	Convey("Given a server over an analyzed corpus", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()
		mux := newMux(svc, svc)
		So(do(mux, http.MethodPost, "/v1/analyze/all", "").Code, ShouldEqual, http.StatusOK)

		Convey("Then every checklist is listed", func() {
			w := do(mux, http.MethodGet, "/v1/checklists", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]types.Checklist](w)), ShouldEqual, 5)
		})

		Convey("Then a single award checklist carries supporting content", func() {
			w := do(mux, http.MethodGet, "/v1/checklists/emerging", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			list := decode[types.Checklist](w)
			So(list.AwardKey, ShouldEqual, "emerging")
			So(list.Checklist[0].Criterion, ShouldEqual, "Innovation")
			So(list.Checklist[0].Satisfied, ShouldBeTrue)
			So(len(list.Checklist[0].SupportingContent), ShouldEqual, 1)
		})

		Convey("Then an unknown award is a validation error", func() {
			So(do(mux, http.MethodGet, "/v1/checklists/bogus", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then readiness lists every award", func() {
			w := do(mux, http.MethodGet, "/v1/readiness", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]types.ReadinessSummary](w)), ShouldEqual, 5)
		})

		Convey("Then suggestions skip satisfied criteria", func() {
			w := do(mux, http.MethodGet, "/v1/suggestions/emerging", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			for _, s := range decode[[]types.MissingContentSuggestion](w) {
				So(s.Criterion, ShouldNotEqual, "Innovation")
			}
		})

		Convey("Then the missing report covers every award", func() {
			w := do(mux, http.MethodGet, "/v1/report/missing", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]types.MissingCriteriaReport](w)), ShouldEqual, 5)
		})

		Convey("Then the export downloads one CSV line per award", func() {
			w := do(mux, http.MethodGet, "/v1/report/export", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "attachment")
			recs, err := csv.NewReader(w.Body).ReadAll()
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 6)
			So(recs[0], ShouldResemble, export.Header())
			found := false
			for _, rec := range recs[1:] {
				if rec[0] == "emerging" {
					found = true
					So(rec[7], ShouldEqual, "New pioneering research approach")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then the export also renders as JSON", func() {
			w := do(mux, http.MethodGet, "/v1/report/export?format=json", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode[[]export.Row](w)), ShouldEqual, 5)
		})

		Convey("Then an unknown export format is a validation error", func() {
			So(do(mux, http.MethodGet, "/v1/report/export?format=xml", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestCriteriaHandler(t *testing.T) {
	Convey("Given a server over a started service", t, func() {
		ctx := context.Background()
		svc := startService(ctx)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("When overriding with a quoted numeric boolean", func() {
			w := do(mux, http.MethodPost, "/v1/criteria/status",
				`{"award_key":"leadership","criterion":"Lead with Purpose","satisfied":"1"}`)

			Convey("Then the criterion is overridden satisfied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				state := decode[model.CriterionState](w)
				So(state.Satisfied, ShouldBeTrue)
				So(state.Override, ShouldBeTrue)
			})

			Convey("Then the state can be read back by path", func() {
				r := do(mux, http.MethodGet, "/v1/criteria/leadership/Lead%20with%20Purpose", "")
				So(r.Code, ShouldEqual, http.StatusOK)
				So(decode[model.CriterionState](r).Override, ShouldBeTrue)
			})

			Convey("Then clearing the override hands it back to matching", func() {
				r := do(mux, http.MethodPost, "/v1/criteria/clear-override",
					`{"award_key":"leadership","criterion":"Lead with Purpose"}`)
				So(r.Code, ShouldEqual, http.StatusOK)
				state := decode[model.CriterionState](r)
				So(state.Override, ShouldBeFalse)
				So(state.Satisfied, ShouldBeFalse)
			})
		})

		Convey("When overriding with a plain false", func() {
			w := do(mux, http.MethodPost, "/v1/criteria/status",
				`{"award_key":"emerging","criterion":"Innovation","satisfied":false}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			state := decode[model.CriterionState](w)
			So(state.Satisfied, ShouldBeFalse)
			So(state.Override, ShouldBeTrue)
		})

		Convey("When satisfied is missing", func() {
			w := do(mux, http.MethodPost, "/v1/criteria/status", `{"award_key":"emerging","criterion":"Innovation"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When satisfied is not a boolean", func() {
			w := do(mux, http.MethodPost, "/v1/criteria/status",
				`{"award_key":"emerging","criterion":"Innovation","satisfied":"maybe"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the criterion is unknown", func() {
			w := do(mux, http.MethodPost, "/v1/criteria/status",
				`{"award_key":"emerging","criterion":"Nope","satisfied":true}`)

			Convey("Then it fails validation", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Kind, ShouldEqual, "validation")
			})
		})
	})
}

func TestServiceUnavailable(t *testing.T) {
	Convey("Given a server over a service that was never started", t, func() {
		svc := service.New()
		mux := newMux(svc, svc)

		Convey("Then operations answer unavailable with a generic message", func() {
			w := do(mux, http.MethodGet, "/v1/readiness", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			body := decode[errorBody](w)
			So(body.Code, ShouldEqual, "unavailable")
			So(body.Kind, ShouldEqual, "internal")
			So(body.Message, ShouldEqual, api.ErrUnavailable.Error())
		})
	})
}
