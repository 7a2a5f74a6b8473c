package video

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, v Video) error {
	const q = `
	INSERT INTO videos
		(video_id, course_id, index, name, description, free, url, image_url, created_at, updated_at)
	VALUES
		(:video_id, :course_id, :index, :name, :description, :free, :url, :image_url, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, v); err != nil {
		return fmt.Errorf("inserting video: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, v Video) error {
	const q = `
	UPDATE videos SET
		index = :index,
		name = :name,
		description = :description,
		free = :free,
		url = :url,
		image_url = :image_url,
		updated_at = :updated_at,
		version = version + 1
	WHERE video_id = :video_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, v); err != nil {
		return fmt.Errorf("updating video: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Video, error) {
	const q = `SELECT * FROM videos WHERE video_id = $1`

	var v Video
	if err := sqlx.GetContext(ctx, db, &v, q, id); err != nil {
		return Video{}, err
	}

	return v, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Video, error) {
	const q = `SELECT * FROM videos ORDER BY course_id, index`

	vs := []Video{}
	if err := sqlx.SelectContext(ctx, db, &vs, q); err != nil {
		return nil, fmt.Errorf("selecting videos: %w", err)
	}

	return vs, nil
}

func FetchAllByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Video, error) {
	const q = `SELECT * FROM videos WHERE course_id = $1 ORDER BY index`

	vs := []Video{}
	if err := sqlx.SelectContext(ctx, db, &vs, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting videos of course[%s]: %w", courseID, err)
	}

	return vs, nil
}
