package model_test

import (
	"strings"
	"testing"

	"github.com/okian/laurel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestContentRef(t *testing.T) {
	Convey("Given content references", t, func() {
		Convey("Validation accepts well-formed refs", func() {
			So(model.ContentRef{Kind: model.KindDocument, ID: "42"}.Validate(), ShouldBeNil)
			So(model.ContentRef{Kind: model.KindEvent, ID: "evt_2024-01"}.Validate(), ShouldBeNil)
			for _, id := range []string{"0", "2", "10", "doc-x1", "seed-1-2", "0x20", "3f2b1c0e-9a7d-4e2a-8c10-2b0d5e7f6a90"} {
				So(model.ContentRef{Kind: model.KindDocument, ID: id}.Validate(), ShouldBeNil)
			}
		})

		Convey("Validation rejects malformed refs", func() {
			So(model.ContentRef{Kind: "memo", ID: "1"}.Validate(), ShouldNotBeNil)
			So(model.ContentRef{Kind: model.KindDocument, ID: ""}.Validate(), ShouldNotBeNil)
			So(model.ContentRef{Kind: model.KindDocument, ID: "a b"}.Validate(), ShouldNotBeNil)
			So(model.ContentRef{Kind: model.KindDocument, ID: "line\nbreak"}.Validate(), ShouldNotBeNil)
			So(model.ContentRef{Kind: model.KindDocument, ID: "tab\tid"}.Validate(), ShouldNotBeNil)
			So(model.ContentRef{Kind: model.KindDocument, ID: strings.Repeat("x", 129)}.Validate(), ShouldNotBeNil)
		})

		Convey("Ordering is by kind then natural id", func() {
			d2 := model.ContentRef{Kind: model.KindDocument, ID: "2"}
			d10 := model.ContentRef{Kind: model.KindDocument, ID: "10"}
			e1 := model.ContentRef{Kind: model.KindEvent, ID: "1"}
			So(d2.Less(d10), ShouldBeTrue)
			So(d10.Less(d2), ShouldBeFalse)
			So(d10.Less(e1), ShouldBeTrue)
			So(d2.String(), ShouldEqual, "document:2")
		})

		Convey("Kinds parse leniently", func() {
			k, err := model.ParseContentKind(" Doc ")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, model.KindDocument)
			_, err = model.ParseContentKind("video")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCriterionState(t *testing.T) {
	Convey("Given criterion states", t, func() {
		key := model.CriterionKey{AwardKey: "leadership", Criterion: "Lead with Purpose"}
		ref := model.ContentRef{Kind: model.KindEvent, ID: "7"}

		a := model.DefaultState(key)
		So(a.Satisfied, ShouldBeFalse)
		So(a.Override, ShouldBeFalse)

		b := a
		b.Satisfied = true
		b.SatisfiedBy = &ref

		Convey("SameContent compares values and refs", func() {
			So(a.SameContent(a), ShouldBeTrue)
			So(a.SameContent(b), ShouldBeFalse)
			c := b.Clone()
			So(c.SameContent(b), ShouldBeTrue)
			c.SatisfiedBy.ID = "8"
			So(b.SatisfiedBy.ID, ShouldEqual, "7")
			So(c.SameContent(b), ShouldBeFalse)
		})

		So(model.ComposeText(" Title ", "", "desc"), ShouldEqual, "Title desc")
		So(key.String(), ShouldEqual, "leadership/Lead with Purpose")
	})
}
