package modelstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
)

const sampleBundle = `{
  "version": "2024-05-01",
  "team_classes": ["data", "backend", "data"],
  "predictors": [
    {"name": "lr", "kind": "linear", "intercept": 10, "coefficients": [40, 0.5, 0, 0, 0]},
    {"name": "rf", "kind": "forest", "trees": [
      {"nodes": [{"feature": 0, "threshold": 0.5, "left": 1, "right": 2}, {"value": 30}, {"value": 90}]}
    ]},
    {"name": "xgb", "kind": "boosted", "base_score": 50, "strict_less": true, "trees": [
      {"nodes": [{"feature": 0, "threshold": 0.5, "left": 1, "right": 2}, {"value": -10}, {"value": 10}]}
    ]}
  ]
}`

// fakeS3 serves one object.
type fakeS3 struct {
	body      string
	err       error
	gotBucket string
	gotKey    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket = aws.ToString(in.Bucket)
	f.gotKey = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestDecode(t *testing.T) {
	Convey("Given a bundle with all predictor kinds", t, func() {
		b, err := Decode([]byte(sampleBundle))
		So(err, ShouldBeNil)

		Convey("Then the ensemble and encoder are built in order", func() {
			So(b.Version, ShouldEqual, "2024-05-01")
			So(b.Ensemble.Names(), ShouldResemble, []string{"lr", "rf", "xgb"})
			So(b.Encoder.Classes(), ShouldResemble, []string{"backend", "data"})
			So(b.Encoder.Encode("data"), ShouldEqual, 1)
		})

		Convey("When scoring a perfect match at 80 efficiency", func() {
			score, err := b.Ensemble.Score(model.FeatureVector{SkillMatchRatio: 1, AvgEfficiency: 80})

			Convey("Then it averages the three predictors", func() {
				So(err, ShouldBeNil)
				// lr = 10 + 40 + 40 = 90, rf = 90, xgb = 60
				So(score, ShouldAlmostEqual, 80.0, 1e-9)
			})
		})

		Convey("When the sample sits on the split threshold", func() {
			score, err := b.Ensemble.Score(model.FeatureVector{SkillMatchRatio: 0.5})

			Convey("Then strict trees go right and others go left", func() {
				So(err, ShouldBeNil)
				// lr = 30, rf = 30, xgb = 60
				So(score, ShouldAlmostEqual, 40.0, 1e-9)
			})
		})
	})

	Convey("Given broken bundles", t, func() {
		cases := []struct{ name, doc string }{
			{"malformed json", `{"predictors": [`},
			{"no classes", `{"team_classes": [], "predictors": [{"kind": "linear", "coefficients": [1,1,1,1,1]}]}`},
			{"no predictors", `{"team_classes": ["a"], "predictors": []}`},
			{"unknown kind", `{"team_classes": ["a"], "predictors": [{"kind": "svm"}]}`},
			{"short coefficients", `{"team_classes": ["a"], "predictors": [{"kind": "linear", "coefficients": [1]}]}`},
			{"dangling child", `{"team_classes": ["a"], "predictors": [{"kind": "forest", "trees": [{"nodes": [{"feature": 0, "left": 1, "right": 5}, {"value": 1}]}]}]}`},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is a configuration error", func() {
				_, err := Decode([]byte(tc.doc))
				So(errors.Is(err, ranking.ErrConfiguration), ShouldBeTrue)
			})
		}

		Convey("Then unknown kinds are reported as such", func() {
			_, err := Decode([]byte(cases[3].doc))
			So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bundle on disk", t, func() {
		path := filepath.Join(t.TempDir(), "bundle.json")
		So(os.WriteFile(path, []byte(sampleBundle), 0o600), ShouldBeNil)

		Convey("When loading through a file source", func() {
			b, err := Load(ctx, FileSource{Path: path})

			Convey("Then the bundle is decoded", func() {
				So(err, ShouldBeNil)
				So(b.Ensemble.Size(), ShouldEqual, 3)
			})
		})

		Convey("When the file is missing", func() {
			_, err := Load(ctx, FileSource{Path: path + ".missing"})

			Convey("Then it is a configuration error", func() {
				So(errors.Is(err, ranking.ErrConfiguration), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bundle in a bucket", t, func() {
		client := &fakeS3{body: sampleBundle}
		src := S3Source{Client: client, Bucket: "models", Key: "skillmatch/v1.json"}

		Convey("When loading through the s3 source", func() {
			b, err := Load(ctx, src)

			Convey("Then the object is fetched and decoded", func() {
				So(err, ShouldBeNil)
				So(b.Ensemble.Size(), ShouldEqual, 3)
				So(client.gotBucket, ShouldEqual, "models")
				So(client.gotKey, ShouldEqual, "skillmatch/v1.json")
				So(src.String(), ShouldEqual, "s3://models/skillmatch/v1.json")
			})
		})

		Convey("When the object cannot be fetched", func() {
			client.err = errors.New("access denied")
			_, err := Load(ctx, src)

			Convey("Then it is a configuration error", func() {
				So(errors.Is(err, ranking.ErrConfiguration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "access denied")
			})
		})
	})
}

func TestParseS3URI(t *testing.T) {
	Convey("Given model uris", t, func() {
		bucket, key, err := ParseS3URI("s3://models/a/b.json")
		So(err, ShouldBeNil)
		So(bucket, ShouldEqual, "models")
		So(key, ShouldEqual, "a/b.json")

		for _, bad := range []string{"models/a.json", "s3://", "s3://models", "s3://models/", "s3:///a.json"} {
			_, _, err := ParseS3URI(bad)
			So(errors.Is(err, ErrInvalidURI), ShouldBeTrue)
		}
	})

	Convey("Given a plain path", t, func() {
		src, err := NewSource(context.Background(), "/etc/skillmatch/models.json", S3Config{})

		Convey("Then a file source is returned", func() {
			So(err, ShouldBeNil)
			So(src, ShouldResemble, FileSource{Path: "/etc/skillmatch/models.json"})
		})
	})

	Convey("Given an empty uri", t, func() {
		_, err := NewSource(context.Background(), "", S3Config{})
		So(errors.Is(err, ErrInvalidURI), ShouldBeTrue)
	})
}
