package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/studynotion-api/api/web"
	"github.com/irsalhamdi/studynotion-api/api/weberr"
	"github.com/irsalhamdi/studynotion-api/core/claims"
	"github.com/irsalhamdi/studynotion-api/core/course"
	"github.com/irsalhamdi/studynotion-api/database"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
)

// HandleCreate records a rating and review. Only enrolled students may
// review, and only once per course.
func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var rn ReviewNew
		if err := web.Decode(w, r, &rn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding review: %w", err))
		}

		if err := validate.Check(rn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		enrolled, err := course.IsEnrolled(ctx, db, rn.CourseID, clm.UserID)
		if err != nil {
			return fmt.Errorf("checking enrollment: %w", err)
		}
		if !enrolled {
			return weberr.NotFound(errors.New("student is not enrolled in the course"))
		}

		now := time.Now().UTC()
		rv := Review{
			ID:        validate.GenerateID(),
			CourseID:  rn.CourseID,
			UserID:    clm.UserID,
			Rating:    rn.Rating,
			Review:    rn.Review,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, rv); err != nil {
			if database.IsUniqueViolation(err) {
				return weberr.Forbidden(err, "course is already reviewed by the user")
			}
			return fmt.Errorf("creating review: %w", err)
		}

		return web.Respond(ctx, w, rv, http.StatusCreated)
	}
}

func HandleAverage(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		avg, err := Average(ctx, db, courseID)
		if err != nil {
			return fmt.Errorf("fetching average rating of course[%s]: %w", courseID, err)
		}

		return web.Respond(ctx, w, avg, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		rows, err := FetchAll(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching reviews: %w", err)
		}

		return web.Respond(ctx, w, rows, http.StatusOK)
	}
}
