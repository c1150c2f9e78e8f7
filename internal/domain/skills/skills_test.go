package skills_test

import (
	"testing"

	"github.com/okian/skillmatch/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given free-text skill lists", t, func() {
		Convey("When normalizing a list with mixed case, padding and duplicates", func() {
			set := skills.Normalize("Python, SQL , python")

			Convey("Then it should trim, lowercase and dedupe", func() {
				So(set.Len(), ShouldEqual, 2)
				So(set.Has("python"), ShouldBeTrue)
				So(set.Has("sql"), ShouldBeTrue)
				So(set.Sorted(), ShouldResemble, []string{"python", "sql"})
			})
		})

		Convey("When normalizing an empty string", func() {
			set := skills.Normalize("")

			Convey("Then it should return an empty, usable set", func() {
				So(set, ShouldNotBeNil)
				So(set.Len(), ShouldEqual, 0)
				So(set.Sorted(), ShouldResemble, []string{})
			})
		})

		Convey("When normalizing only separators and whitespace", func() {
			set := skills.Normalize(" , ,,  ")

			Convey("Then empty tokens should be dropped", func() {
				So(set.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a token contains inner spaces", func() {
			set := skills.Normalize("Machine Learning,  Data  Viz ")

			Convey("Then inner spacing should be kept", func() {
				So(set.Has("machine learning"), ShouldBeTrue)
				So(set.Has("data  viz"), ShouldBeTrue)
			})
		})

		Convey("When a token has non-ASCII capitals", func() {
			set := skills.Normalize("ÉTL, Größe")

			Convey("Then it should be lowercased", func() {
				So(set.Has("étl"), ShouldBeTrue)
				So(set.Has("größe"), ShouldBeTrue)
			})
		})
	})
}

func TestFromList(t *testing.T) {
	Convey("Given historical skill records", t, func() {
		records := []string{"Go, Docker", "go", "", "Kubernetes ,DOCKER"}

		Convey("When merging them", func() {
			set := skills.FromList(records)

			Convey("Then the result is the normalized union", func() {
				So(set.Sorted(), ShouldResemble, []string{"docker", "go", "kubernetes"})
			})
		})
	})
}

func TestIntersect(t *testing.T) {
	Convey("Given two sets", t, func() {
		a := skills.Normalize("python, sql, go")
		b := skills.Normalize("sql, java, go, rust")

		Convey("Then the intersection count is symmetric", func() {
			So(a.Intersect(b), ShouldEqual, 2)
			So(b.Intersect(a), ShouldEqual, 2)
		})

		Convey("And intersecting with an empty set yields zero", func() {
			So(a.Intersect(skills.Set{}), ShouldEqual, 0)
		})
	})
}
