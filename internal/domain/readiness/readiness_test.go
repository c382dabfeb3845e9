package readiness

import (
	"context"
	"testing"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeStates map[string][]model.CriterionState

func (f fakeStates) States(_ context.Context, award string) ([]model.CriterionState, error) {
	return f[award], nil
}

func ref(kind model.ContentKind, id string) *model.ContentRef {
	return &model.ContentRef{Kind: kind, ID: id}
}

func TestClassify(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		th := DefaultThresholds()
		So(th.Validate(), ShouldBeNil)

		Convey("Then the boundaries are inclusive", func() {
			So(th.Classify(0), ShouldEqual, types.StatusIncomplete)
			So(th.Classify(0.49), ShouldEqual, types.StatusIncomplete)
			So(th.Classify(0.5), ShouldEqual, types.StatusNearlyReady)
			So(th.Classify(0.6), ShouldEqual, types.StatusNearlyReady)
			So(th.Classify(1.0), ShouldEqual, types.StatusReadyToApply)
		})
	})

	Convey("Given inverted thresholds", t, func() {
		So(Thresholds{Ready: 0.4, NearlyReady: 0.6}.Validate(), ShouldNotBeNil)
		So(Thresholds{Ready: 1.5, NearlyReady: 0.5}.Validate(), ShouldNotBeNil)
		So(Thresholds{Ready: 1, NearlyReady: 0}.Validate(), ShouldNotBeNil)
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given leadership with two matched and one overridden criterion", t, func() {
		tax := taxonomy.Default()
		award, err := tax.Award("leadership")
		So(err, ShouldBeNil)
		So(len(award.Criteria), ShouldEqual, 5)

		states := make([]model.CriterionState, 0, 5)
		for _, c := range award.Criteria {
			states = append(states, model.DefaultState(c.Key()))
		}
		states[0].Satisfied, states[0].SatisfiedBy = true, ref(model.KindDocument, "1")
		states[1].Satisfied, states[1].SatisfiedBy = true, ref(model.KindEvent, "4")
		states[2].Satisfied, states[2].Override = true, true
		states[3].Override, states[3].SatisfiedBy = true, ref(model.KindDocument, "9")

		s := DefaultThresholds().Summarize(award, states)

		Convey("Then three of five are satisfied and the award is nearly ready", func() {
			So(s.SatisfiedCount, ShouldEqual, 3)
			So(s.TotalCount, ShouldEqual, 5)
			So(s.Rate, ShouldAlmostEqual, 0.6, 1e-9)
			So(s.Status, ShouldEqual, types.StatusNearlyReady)
		})

		Convey("Then only satisfying content is counted", func() {
			So(s.DocumentCount, ShouldEqual, 1)
			So(s.EventCount, ShouldEqual, 1)
		})
	})
}

func TestAggregator(t *testing.T) {
	Convey("Given an aggregator over untouched state", t, func() {
		tax := taxonomy.Default()
		states := fakeStates{}
		for _, a := range tax.Awards() {
			for _, c := range a.Criteria {
				states[a.Key] = append(states[a.Key], model.DefaultState(c.Key()))
			}
		}
		agg := NewAggregator(tax, states, Thresholds{})
		So(agg.Thresholds(), ShouldResemble, DefaultThresholds())

		Convey("When summarizing all awards", func() {
			all, err := agg.SummarizeAll(context.Background())
			So(err, ShouldBeNil)
			Convey("Then every award is incomplete at rate 0", func() {
				So(len(all), ShouldEqual, 5)
				for _, s := range all {
					So(s.Rate, ShouldEqual, 0.0)
					So(s.Status, ShouldEqual, types.StatusIncomplete)
				}
			})
		})

		Convey("When the award is unknown", func() {
			_, err := agg.Summarize(context.Background(), "ghost")
			So(errkind.KindOf(err), ShouldEqual, errkind.Validation)
		})
	})
}
