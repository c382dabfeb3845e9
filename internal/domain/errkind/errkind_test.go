package errkind_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/laurel/internal/domain/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorKinds(t *testing.T) {
	Convey("Given classified errors", t, func() {
		base := errors.New("no such criterion")

		Convey("WrapKind keeps the cause and the kind", func() {
			err := errkind.WrapKind("checklist.set_override", errkind.Validation, base)
			So(errors.Is(err, base), ShouldBeTrue)
			So(errors.Is(err, errkind.ErrValidation), ShouldBeTrue)
			So(errors.Is(err, errkind.ErrNotFound), ShouldBeFalse)
			So(errkind.KindOf(err), ShouldEqual, errkind.Validation)
			So(err.Error(), ShouldEqual, "checklist.set_override: no such criterion")
		})

		Convey("Wrap preserves an inner kind through fmt wrapping", func() {
			inner := errkind.New("content.get", errkind.NotFound, "document %s", "42")
			err := errkind.Wrap("analysis.single", fmt.Errorf("lookup: %w", inner))
			So(errkind.KindOf(err), ShouldEqual, errkind.NotFound)
			So(errors.Is(err, errkind.ErrNotFound), ShouldBeTrue)
		})

		Convey("Unclassified errors default to internal", func() {
			So(errkind.KindOf(base), ShouldEqual, errkind.Internal)
			So(errkind.KindOf(errkind.Wrap("op", base)), ShouldEqual, errkind.Internal)
			So(errkind.Wrap("op", nil), ShouldBeNil)
			So(errkind.WrapKind("op", errkind.Conflict, nil), ShouldBeNil)
		})

		Convey("Kinds have stable names", func() {
			So(errkind.Validation.String(), ShouldEqual, "validation")
			So(errkind.NotFound.String(), ShouldEqual, "not_found")
			So(errkind.Conflict.String(), ShouldEqual, "conflict")
			So(errkind.Internal.String(), ShouldEqual, "internal")
		})
	})
}
