package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, image_url, active, created_at, updated_at)
	VALUES
		(:user_id, :name, :email, :role, :password_hash, :image_url, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, err
	}

	return u, nil
}

func Activate(ctx context.Context, db sqlx.ExtContext, id string, now time.Time) error {
	const q = `
	UPDATE users SET
		active = TRUE,
		updated_at = $2,
		version = version + 1
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, now); err != nil {
		return fmt.Errorf("activating user: %w", err)
	}

	return nil
}

func UpdatePassword(ctx context.Context, db sqlx.ExtContext, id string, hash []byte, now time.Time) error {
	const q = `
	UPDATE users SET
		password_hash = $2,
		updated_at = $3,
		version = version + 1
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, hash, now); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}

	return nil
}
