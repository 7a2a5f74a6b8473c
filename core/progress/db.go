package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Create inserts the (course, user) progress record with an empty
// completed-set. Keyed on (course_id, user_id) so retried enrollments
// never produce a second record.
func Create(ctx context.Context, db sqlx.ExtContext, p Progress) error {
	const q = `
	INSERT INTO progress
		(progress_id, course_id, user_id, created_at, updated_at)
	VALUES
		(:progress_id, :course_id, :user_id, :created_at, :updated_at)
	ON CONFLICT (course_id, user_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting progress: %w", err)
	}

	return nil
}

func FetchByCourse(ctx context.Context, db sqlx.ExtContext, courseID string, userID string) (Progress, error) {
	const q = `SELECT * FROM progress WHERE course_id = $1 AND user_id = $2`

	var p Progress
	if err := sqlx.GetContext(ctx, db, &p, q, courseID, userID); err != nil {
		return Progress{}, err
	}

	const qv = `SELECT video_id FROM progress_videos WHERE progress_id = $1 ORDER BY created_at`

	p.CompletedVideos = []string{}
	if err := sqlx.SelectContext(ctx, db, &p.CompletedVideos, qv, p.ID); err != nil {
		return Progress{}, fmt.Errorf("selecting completed videos: %w", err)
	}

	return p, nil
}

// Complete marks a video done in the user's progress record for the
// video's course. Completing an already-completed video is a no-op.
func Complete(ctx context.Context, db sqlx.ExtContext, videoID string, userID string, now time.Time) (bool, error) {
	const q = `
	INSERT INTO progress_videos (progress_id, video_id, created_at)
	SELECT p.progress_id, v.video_id, $3
	FROM videos AS v
	JOIN progress AS p ON p.course_id = v.course_id AND p.user_id = $2
	WHERE v.video_id = $1
	ON CONFLICT (progress_id, video_id) DO NOTHING`

	res, err := db.ExecContext(ctx, q, videoID, userID, now)
	if err != nil {
		return false, fmt.Errorf("inserting completed video: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n > 0, nil
}

// Exists reports whether a progress record exists for the pair.
func Exists(ctx context.Context, db sqlx.ExtContext, courseID string, userID string) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1 FROM progress WHERE course_id = $1 AND user_id = $2
	)`

	var ok bool
	if err := sqlx.GetContext(ctx, db, &ok, q, courseID, userID); err != nil {
		return false, fmt.Errorf("checking progress record: %w", err)
	}

	return ok, nil
}
