package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/studynotion-api/core/course"
	"github.com/irsalhamdi/studynotion-api/core/video"
)

type courseTest struct {
	*TestEnv
	counter int
}

func TestCourse(t *testing.T) {
	env, err := NewTestEnv(t, "course_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{TestEnv: env}

	c1 := ct.createCourseOK(t, 500)
	c2 := ct.createCourseOK(t, 700)

	ct.listCoursesOK(t, []course.Course{c1, c2})
	ct.showCourseOK(t, c1)

	ct.createCourseForbidden(t)
	ct.listCoursesOwnedOK(t, []course.Course{})
}

func (ct *courseTest) createCourseOK(t *testing.T, price int) course.Course {
	t.Helper()

	if err := Login(ct.TestEnv, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	ct.counter++
	cn := course.CourseNew{
		Name:        fmt.Sprintf("Course %d", ct.counter),
		Description: "A test course.",
		Price:       price,
		ImageURL:    "https://images.test.com/course.png",
	}

	body, err := json.Marshal(cn)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, ct.URL+"/courses", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create course: status code %s", w.Status)
	}

	var c course.Course
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("cannot unmarshal created course: %v", err)
	}

	return c
}

func (ct *courseTest) createVideoOK(t *testing.T, courseID string, index int) video.Video {
	t.Helper()

	if err := Login(ct.TestEnv, ct.AdminEmail, ct.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	vn := video.VideoNew{
		CourseID:    courseID,
		Index:       index,
		Name:        fmt.Sprintf("Video %d", index),
		Description: "A test video.",
		URL:         "https://videos.test.com/lesson.mp4",
		ImageURL:    "https://images.test.com/lesson.png",
	}

	body, err := json.Marshal(vn)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, ct.URL+"/videos", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create video: status code %s", w.Status)
	}

	var v video.Video
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("cannot unmarshal created video: %v", err)
	}

	return v
}

func (ct *courseTest) createCourseForbidden(t *testing.T) {
	t.Helper()

	if err := Login(ct.TestEnv, ct.UserEmail, ct.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	cn := course.CourseNew{
		Name:        "Sneaky Course",
		Description: "Should not be allowed.",
		Price:       100,
		ImageURL:    "https://images.test.com/course.png",
	}

	body, err := json.Marshal(cn)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, ct.URL+"/courses", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusUnauthorized && w.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin created a course: status code %s", w.Status)
	}
}

func (ct *courseTest) showCourseOK(t *testing.T, want course.Course) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, ct.URL+"/courses/"+want.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't fetch course: status code %s", w.Status)
	}

	var got course.Course
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("cannot unmarshal course: %v", err)
	}

	if got.ID != want.ID || got.Name != want.Name || got.Price != want.Price {
		t.Fatalf("fetched course mismatch: got %+v, want %+v", got, want)
	}
}

func (ct *courseTest) listCoursesOK(t *testing.T, want []course.Course) {
	t.Helper()
	ct.listCourses(t, "/courses", want)
}

func (ct *courseTest) listCoursesOwnedOK(t *testing.T, want []course.Course) {
	t.Helper()

	if err := Login(ct.TestEnv, ct.UserEmail, ct.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(ct.TestEnv)

	ct.listCourses(t, "/courses/owned", want)
}

func (ct *courseTest) listCourses(t *testing.T, path string, want []course.Course) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, ct.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list courses at %s: status code %s", path, w.Status)
	}

	var got []course.Course
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("cannot unmarshal courses: %v", err)
	}

	if diff := cmp.Diff(courseIDs(want), courseIDs(got)); diff != "" {
		t.Fatalf("courses at %s mismatch (-want +got):\n%s", path, diff)
	}
}

func courseIDs(cs []course.Course) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}
