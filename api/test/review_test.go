package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/irsalhamdi/studynotion-api/core/review"
)

type reviewTest struct {
	*TestEnv
}

func TestReview(t *testing.T) {
	env, err := NewTestEnv(t, "review_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	vt := &reviewTest{env}
	ot := &orderTest{env}
	ct := &courseTest{TestEnv: env}

	c1 := ct.createCourseOK(t, 400)
	c2 := ct.createCourseOK(t, 600)

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}

	ot.purchase(t, []string{c1.ID})

	vt.createReviewOK(t, c1.ID, 5, "Clear and complete.")

	// One review per user and course: a second attempt is rejected.
	vt.createReviewFails(t, c1.ID, 4, http.StatusForbidden)

	// Reviewing a course the user never bought is rejected.
	vt.createReviewFails(t, c2.ID, 5, http.StatusNotFound)

	vt.createReviewFails(t, c1.ID, 0, http.StatusBadRequest)
	vt.createReviewFails(t, c1.ID, 6, http.StatusBadRequest)

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	vt.averageRatingOK(t, c1.ID, 5)
	vt.averageRatingOK(t, c2.ID, 0)

	// A second buyer reviews the same course; the average moves.
	if err := Login(env, env.AdminEmail, env.AdminPass); err != nil {
		t.Fatal(err)
	}
	ot.purchase(t, []string{c1.ID})
	vt.createReviewOK(t, c1.ID, 3, "Good, a bit fast.")
	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	vt.averageRatingOK(t, c1.ID, 4)

	rows := vt.listReviewsOK(t)
	if len(rows) != 2 {
		t.Fatalf("listed reviews: got %d, want 2", len(rows))
	}
	if rows[0].Rating < rows[1].Rating {
		t.Fatalf("reviews are not sorted by rating: %d before %d", rows[0].Rating, rows[1].Rating)
	}
	if rows[0].CourseName != c1.Name {
		t.Fatalf("review course name: got %q, want %q", rows[0].CourseName, c1.Name)
	}
	if rows[0].UserName == "" {
		t.Fatal("review has no reviewer name")
	}
}

func (vt *reviewTest) createReviewOK(t *testing.T, courseID string, rating int, text string) {
	t.Helper()

	w := vt.createReview(t, courseID, rating, text)
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create review: status code %s", w.Status)
	}

	var rv review.Review
	if err := json.NewDecoder(w.Body).Decode(&rv); err != nil {
		t.Fatalf("cannot unmarshal created review: %v", err)
	}

	if rv.CourseID != courseID || rv.Rating != rating {
		t.Fatalf("created review mismatch: %+v", rv)
	}
}

func (vt *reviewTest) createReviewFails(t *testing.T, courseID string, rating int, want int) {
	t.Helper()

	w := vt.createReview(t, courseID, rating, "Some text.")
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("creating review: status code %d, want %d", w.StatusCode, want)
	}
}

func (vt *reviewTest) createReview(t *testing.T, courseID string, rating int, text string) *http.Response {
	t.Helper()

	body, err := json.Marshal(review.ReviewNew{
		CourseID: courseID,
		Rating:   rating,
		Review:   text,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, vt.URL+"/reviews", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := vt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

func (vt *reviewTest) averageRatingOK(t *testing.T, courseID string, want float64) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, vt.URL+"/courses/"+courseID+"/rating", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := vt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't fetch average rating: status code %s", w.Status)
	}

	var avg review.AverageRating
	if err := json.NewDecoder(w.Body).Decode(&avg); err != nil {
		t.Fatalf("cannot unmarshal average rating: %v", err)
	}

	if avg.CourseID != courseID {
		t.Fatalf("average rating course: got %q, want %q", avg.CourseID, courseID)
	}
	if avg.AverageRating != want {
		t.Fatalf("average rating: got %v, want %v", avg.AverageRating, want)
	}
}

func (vt *reviewTest) listReviewsOK(t *testing.T) []review.Row {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, vt.URL+"/reviews", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := vt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list reviews: status code %s", w.Status)
	}

	var rows []review.Row
	if err := json.NewDecoder(w.Body).Decode(&rows); err != nil {
		t.Fatalf("cannot unmarshal reviews: %v", err)
	}

	return rows
}
