package video

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/studynotion-api/api/web"
	"github.com/irsalhamdi/studynotion-api/api/weberr"
	"github.com/irsalhamdi/studynotion-api/core/claims"
	"github.com/irsalhamdi/studynotion-api/core/course"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		vs, err := FetchAll(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching videos: %w", err)
		}

		return web.Respond(ctx, w, vs, http.StatusOK)
	}
}

func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		vs, err := FetchAllByCourse(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching videos of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, vs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		v, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching video[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}

// HandleShowFree exposes the playback URL only for preview videos.
func HandleShowFree(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		v, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching video[%s]: %w", id, err)
		}

		if !v.Free {
			return weberr.NotAuthorized(errors.New("video is not free"))
		}

		full := struct {
			Video
			URL string `json:"url"`
		}{v, v.URL}

		return web.Respond(ctx, w, full, http.StatusOK)
	}
}

// HandleShowFull exposes the playback URL to enrolled students.
func HandleShowFull(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		v, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching video[%s]: %w", id, err)
		}

		enrolled, err := course.IsEnrolled(ctx, db, v.CourseID, clm.UserID)
		if err != nil {
			return fmt.Errorf("checking enrollment: %w", err)
		}
		if !enrolled {
			return weberr.NotAuthorized(errors.New("user is not enrolled in the course"))
		}

		full := struct {
			Video
			URL string `json:"url"`
		}{v, v.URL}

		return web.Respond(ctx, w, full, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var vn VideoNew
		if err := web.Decode(w, r, &vn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding video: %w", err))
		}

		if err := validate.Check(vn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := course.Fetch(ctx, db, vn.CourseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching course[%s]: %w", vn.CourseID, err)
		}

		now := time.Now().UTC()
		v := Video{
			ID:          validate.GenerateID(),
			CourseID:    vn.CourseID,
			Index:       vn.Index,
			Name:        vn.Name,
			Description: vn.Description,
			Free:        vn.Free,
			URL:         vn.URL,
			ImageURL:    vn.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, v); err != nil {
			return fmt.Errorf("creating video: %w", err)
		}

		return web.Respond(ctx, w, v, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var vu VideoUp
		if err := web.Decode(w, r, &vu); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding video update: %w", err))
		}

		if err := validate.Check(vu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		v, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching video[%s]: %w", id, err)
		}

		if vu.Index != nil {
			v.Index = *vu.Index
		}
		if vu.Name != nil {
			v.Name = *vu.Name
		}
		if vu.Description != nil {
			v.Description = *vu.Description
		}
		if vu.Free != nil {
			v.Free = *vu.Free
		}
		if vu.URL != nil {
			v.URL = *vu.URL
		}
		if vu.ImageURL != nil {
			v.ImageURL = *vu.ImageURL
		}
		v.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, v); err != nil {
			return fmt.Errorf("updating video[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, v, http.StatusOK)
	}
}
