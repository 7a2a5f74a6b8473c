package test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/irsalhamdi/studynotion-api/core/progress"
)

type progressTest struct {
	*TestEnv
}

func TestProgress(t *testing.T) {
	env, err := NewTestEnv(t, "progress_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	pt := &progressTest{env}
	ot := &orderTest{env}
	ct := &courseTest{TestEnv: env}

	c := ct.createCourseOK(t, 800)
	v1 := ct.createVideoOK(t, c.ID, 0)
	v2 := ct.createVideoOK(t, c.ID, 1)

	locked := ct.createCourseOK(t, 900)
	vLocked := ct.createVideoOK(t, locked.ID, 0)

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	// No record before the purchase.
	pt.showProgressFails(t, c.ID, http.StatusNotFound)

	ot.purchase(t, []string{c.ID})

	pt.showProgressOK(t, c.ID, []string{})

	pt.completeOK(t, v1.ID)
	pt.showProgressOK(t, c.ID, []string{v1.ID})

	// Completing the same video twice does not duplicate it.
	pt.completeOK(t, v1.ID)
	pt.showProgressOK(t, c.ID, []string{v1.ID})

	pt.completeOK(t, v2.ID)
	pt.showProgressOK(t, c.ID, []string{v1.ID, v2.ID})

	// Videos of courses the user never bought stay out of reach.
	pt.completeFails(t, vLocked.ID, http.StatusUnauthorized)
}

func (pt *progressTest) completeOK(t *testing.T, videoID string) {
	t.Helper()

	w := pt.complete(t, videoID)
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't complete video[%s]: status code %s", videoID, w.Status)
	}
}

func (pt *progressTest) completeFails(t *testing.T, videoID string, want int) {
	t.Helper()

	w := pt.complete(t, videoID)
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("completing video[%s]: status code %d, want %d", videoID, w.StatusCode, want)
	}
}

func (pt *progressTest) complete(t *testing.T, videoID string) *http.Response {
	t.Helper()

	r, err := http.NewRequest(http.MethodPut, pt.URL+"/videos/"+videoID+"/progress", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := pt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

func (pt *progressTest) showProgressOK(t *testing.T, courseID string, completed []string) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, pt.URL+"/courses/"+courseID+"/progress", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := pt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't fetch progress: status code %s", w.Status)
	}

	var p progress.Progress
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("cannot unmarshal progress: %v", err)
	}

	if len(p.CompletedVideos) != len(completed) {
		t.Fatalf("completed videos: got %v, want %v", p.CompletedVideos, completed)
	}
	for _, id := range completed {
		var found bool
		for _, got := range p.CompletedVideos {
			if got == id {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("video[%s] missing from completed set %v", id, p.CompletedVideos)
		}
	}
}

func (pt *progressTest) showProgressFails(t *testing.T, courseID string, want int) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, pt.URL+"/courses/"+courseID+"/progress", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := pt.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("fetching progress: status code %d, want %d", w.StatusCode, want)
	}
}
