package review

import (
	"testing"

	"github.com/irsalhamdi/studynotion-api/validate"
)

func TestReviewNewRatingBounds(t *testing.T) {
	base := ReviewNew{
		CourseID: validate.GenerateID(),
		Review:   "solid course",
	}

	for _, rating := range []int{1, 2, 5} {
		rn := base
		rn.Rating = rating
		if err := validate.Check(rn); err != nil {
			t.Errorf("rating %d should be accepted: %v", rating, err)
		}
	}

	for _, rating := range []int{0, -1, 6, 100} {
		rn := base
		rn.Rating = rating
		if err := validate.Check(rn); err == nil {
			t.Errorf("rating %d should be rejected", rating)
		}
	}
}

func TestReviewNewRequiredFields(t *testing.T) {
	cases := map[string]ReviewNew{
		"missing course": {Rating: 3, Review: "ok"},
		"bad course id":  {CourseID: "123", Rating: 3, Review: "ok"},
		"missing body":   {CourseID: validate.GenerateID(), Rating: 3},
	}

	for name, rn := range cases {
		if err := validate.Check(rn); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}
