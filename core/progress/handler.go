package progress

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
	"github.com/irsalhamdi/studynotion-api/core/video"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShowByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := FetchByCourse(ctx, db, courseID, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching progress of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleComplete marks a video completed in the caller's progress record.
func HandleComplete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		videoID := web.Param(r, "id")
		if err := validate.CheckID(videoID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		v, err := video.Fetch(ctx, db, videoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching video[%s]: %w", videoID, err)
		}

		enrolled, err := Exists(ctx, db, v.CourseID, clm.UserID)
		if err != nil {
			return fmt.Errorf("checking progress record: %w", err)
		}
		if !enrolled {
			return weberr.NotAuthorized(errors.New("user is not enrolled in the course"))
		}

		if _, err := Complete(ctx, db, videoID, clm.UserID, time.Now().UTC()); err != nil {
			return fmt.Errorf("completing video[%s]: %w", videoID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
