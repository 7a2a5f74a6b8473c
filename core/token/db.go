package token

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, t Token) error {
	const q = `
	INSERT INTO tokens (token_hash, user_id, scope, expiry)
	VALUES (:token_hash, :user_id, :scope, :expiry)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, t); err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	return nil
}

// Fetch returns the token row for the hash and scope if it has not
// expired yet.
func Fetch(ctx context.Context, db sqlx.ExtContext, hash []byte, scope string, now time.Time) (Token, error) {
	const q = `
	SELECT * FROM tokens
	WHERE token_hash = $1 AND scope = $2 AND expiry > $3`

	var t Token
	if err := sqlx.GetContext(ctx, db, &t, q, hash, scope, now); err != nil {
		return Token{}, err
	}

	return t, nil
}

// DeleteByUser burns every token of the scope for the user, both on
// issue (superseding) and on redemption.
func DeleteByUser(ctx context.Context, db sqlx.ExtContext, userID string, scope string) error {
	const q = `DELETE FROM tokens WHERE user_id = $1 AND scope = $2`

	if _, err := db.ExecContext(ctx, q, userID, scope); err != nil {
		return fmt.Errorf("deleting tokens: %w", err)
	}

	return nil
}
