package course

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, name, description, image_url, price, created_at, updated_at)
	VALUES
		(:course_id, :name, :description, :image_url, :price, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		name = :name,
		description = :description,
		image_url = :image_url,
		price = :price,
		updated_at = :updated_at,
		version = version + 1
	WHERE course_id = :course_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating course: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	const q = `SELECT * FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Course{}, err
	}

	return c, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `SELECT * FROM courses ORDER BY created_at`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}

	return cs, nil
}

// FetchEnrolled returns the courses the user's profile references.
func FetchEnrolled(ctx context.Context, db sqlx.ExtContext, userID string) ([]Course, error) {
	const q = `
	SELECT c.* FROM courses AS c
	JOIN enrollments AS e ON e.course_id = c.course_id
	WHERE e.user_id = $1
	ORDER BY e.created_at`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q, userID); err != nil {
		return nil, fmt.Errorf("selecting enrolled courses: %w", err)
	}

	return cs, nil
}

// Enroll adds the user to the course's enrolled-set. The keyed insert
// makes re-enrollment a no-op instead of a duplicate.
func Enroll(ctx context.Context, db sqlx.ExtContext, courseID string, userID string, now time.Time) error {
	const q = `
	INSERT INTO enrollments (course_id, user_id, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (course_id, user_id) DO NOTHING`

	if _, err := db.ExecContext(ctx, q, courseID, userID, now); err != nil {
		return fmt.Errorf("inserting enrollment: %w", err)
	}

	return nil
}

func IsEnrolled(ctx context.Context, db sqlx.ExtContext, courseID string, userID string) (bool, error) {
	const q = `
	SELECT EXISTS (
		SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2
	)`

	var enrolled bool
	if err := sqlx.GetContext(ctx, db, &enrolled, q, courseID, userID); err != nil {
		return false, fmt.Errorf("checking enrollment: %w", err)
	}

	return enrolled, nil
}
