package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/okian/laurel/internal/adapters/mq/queue"
	"github.com/okian/laurel/internal/domain/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFlexBool(t *testing.T) {
	Convey("Given the boolean spellings clients send", t, func() {
		cases := map[string]bool{
			`true`:    true,
			`false`:   false,
			`1`:       true,
			`0`:       false,
			`"1"`:     true,
			`"0"`:     false,
			`"true"`:  true,
			`"FALSE"`: false,
			`" 1 "`:   true,
		}
		for raw, want := range cases {
			var b flexBool
			So(json.Unmarshal([]byte(raw), &b), ShouldBeNil)
			So(bool(b), ShouldEqual, want)
		}

		Convey("Then anything else is rejected", func() {
			for _, raw := range []string{`"yes"`, `2`, `"maybe"`, `{}`} {
				var b flexBool
				So(json.Unmarshal([]byte(raw), &b), ShouldNotBeNil)
			}
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{errkind.New("op", errkind.Validation, "bad key"), http.StatusBadRequest, "bad_request"},
			{errkind.New("op", errkind.NotFound, "gone"), http.StatusNotFound, "not_found"},
			{errkind.New("op", errkind.Conflict, "raced"), http.StatusConflict, "conflict"},
			{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
			{errkind.Wrap("op", queue.ErrQueueFull), http.StatusTooManyRequests, "backpressure"},
			{errkind.Wrap("op", queue.ErrQueueClosed), http.StatusServiceUnavailable, "unavailable"},
			{badRequest("op", errors.New("empty")), http.StatusBadRequest, "bad_request"},
		}
		for _, c := range cases {
			status, code := classify(c.err)
			So(status, ShouldEqual, c.status)
			So(code, ShouldEqual, c.code)
		}
	})
}

func TestErrorType(t *testing.T) {
	Convey("Given error statuses", t, func() {
		So(errorType(http.StatusBadRequest), ShouldEqual, "client_error")
		So(errorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(errorType(http.StatusConflict), ShouldEqual, "conflict")
		So(errorType(http.StatusTooManyRequests), ShouldEqual, "backpressure")
		So(errorType(http.StatusServiceUnavailable), ShouldEqual, "unavailable")
		So(errorType(http.StatusInternalServerError), ShouldEqual, "server_error")
	})
}
