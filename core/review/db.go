package review

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Create inserts the review. The (course_id, user_id) unique constraint
// rejects a second review by the same user; callers detect it with
// database.IsUniqueViolation.
func Create(ctx context.Context, db sqlx.ExtContext, rv Review) error {
	const q = `
	INSERT INTO reviews
		(review_id, course_id, user_id, rating, review, created_at, updated_at)
	VALUES
		(:review_id, :course_id, :user_id, :rating, :review, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, rv); err != nil {
		return err
	}

	return nil
}

func Average(ctx context.Context, db sqlx.ExtContext, courseID string) (AverageRating, error) {
	const q = `
	SELECT
		$1::uuid AS course_id,
		COALESCE(AVG(rating), 0) AS average_rating
	FROM reviews
	WHERE course_id = $1`

	var avg AverageRating
	if err := sqlx.GetContext(ctx, db, &avg, q, courseID); err != nil {
		return AverageRating{}, fmt.Errorf("selecting average rating: %w", err)
	}

	return avg, nil
}

// FetchAll lists every review, best rated first, with reviewer and
// course details joined in.
func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Row, error) {
	const q = `
	SELECT
		r.*,
		u.name AS user_name,
		u.email AS user_email,
		u.image_url AS user_image,
		c.name AS course_name
	FROM reviews AS r
	JOIN users AS u ON u.user_id = r.user_id
	JOIN courses AS c ON c.course_id = r.course_id
	ORDER BY r.rating DESC, r.created_at DESC`

	rows := []Row{}
	if err := sqlx.SelectContext(ctx, db, &rows, q); err != nil {
		return nil, fmt.Errorf("selecting reviews: %w", err)
	}

	return rows, nil
}
