package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/skillmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendation(t *testing.T) {
	Convey("Given a recommendation without team or skills", t, func() {
		rec := types.Recommendation{
			EmployeeID:          "E1",
			Name:                "Ada",
			Email:               "ada@example.com",
			PredictedEfficiency: 87.5,
			SkillMatch:          1,
			Skills:              []string{},
		}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(rec)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then team is an empty string and skills an empty list", func() {
				So(decoded["team"], ShouldEqual, "")
				So(decoded["skills"], ShouldResemble, []any{})
				So(decoded["predicted_efficiency"], ShouldEqual, 87.5)
				So(decoded["skill_match"], ShouldEqual, 1.0)
			})
		})
	})
}

func TestJobStatus(t *testing.T) {
	Convey("Given job states", t, func() {
		Convey("Then only done and failed are terminal", func() {
			So(types.JobQueued.Finished(), ShouldBeFalse)
			So(types.JobRunning.Finished(), ShouldBeFalse)
			So(types.JobDone.Finished(), ShouldBeTrue)
			So(types.JobFailed.Finished(), ShouldBeTrue)
		})
	})
}
