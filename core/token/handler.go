package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/studynotion-api/api/background"
	"github.com/irsalhamdi/studynotion-api/api/web"
	"github.com/irsalhamdi/studynotion-api/api/weberr"
	"github.com/irsalhamdi/studynotion-api/core/user"
	"github.com/irsalhamdi/studynotion-api/database"
	"github.com/irsalhamdi/studynotion-api/random"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// HandleToken issues an activation or recovery token and mails it.
func HandleToken(db *sqlx.DB, mailer Mailer, timeout time.Duration, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var tn TokenNew
		if err := web.Decode(w, r, &tn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding token request: %w", err))
		}

		if err := validate.Check(tn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		u, err := user.FetchByEmail(ctx, db, tn.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Do not leak which emails exist.
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		plaintext, err := random.StringSecure(26)
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}

		t := Token{
			Hash:   Hash(plaintext),
			UserID: u.ID,
			Scope:  tn.Scope,
			Expiry: time.Now().UTC().Add(timeout),
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := DeleteByUser(ctx, tx, u.ID, tn.Scope); err != nil {
				return err
			}
			return Create(ctx, tx, t)
		})
		if err != nil {
			return fmt.Errorf("storing token: %w", err)
		}

		bg.Add(func() error {
			if tn.Scope == ScopeActivation {
				return mailer.SendActivationToken(u.Email, plaintext)
			}
			return mailer.SendRecoveryToken(u.Email, plaintext)
		})

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleActivation redeems an activation token and logs the user in.
func HandleActivation(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var act Activation
		if err := web.Decode(w, r, &act); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding activation: %w", err))
		}

		if err := validate.Check(act); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		u, err := redeem(ctx, db, act.Email, act.Token, ScopeActivation)
		if err != nil {
			return err
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Activate(ctx, tx, u.ID, time.Now().UTC()); err != nil {
				return err
			}
			return DeleteByUser(ctx, tx, u.ID, ScopeActivation)
		})
		if err != nil {
			return fmt.Errorf("activating user[%s]: %w", u.ID, err)
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}
		session.Put(ctx, "user_id", u.ID)
		session.Put(ctx, "role", u.Role)

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleRecovery redeems a recovery token and resets the password.
func HandleRecovery(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rec Recovery
		if err := web.Decode(w, r, &rec); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding recovery: %w", err))
		}

		if err := validate.Check(rec); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		u, err := redeem(ctx, db, rec.Email, rec.Token, ScopeRecovery)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.UpdatePassword(ctx, tx, u.ID, hash, time.Now().UTC()); err != nil {
				return err
			}
			return DeleteByUser(ctx, tx, u.ID, ScopeRecovery)
		})
		if err != nil {
			return fmt.Errorf("recovering user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func redeem(ctx context.Context, db *sqlx.DB, email string, plaintext string, scope string) (user.User, error) {
	u, err := user.FetchByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, weberr.BadRequest(errors.New("invalid email or token"))
		}
		return user.User{}, fmt.Errorf("fetching user by email: %w", err)
	}

	t, err := Fetch(ctx, db, Hash(plaintext), scope, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, weberr.BadRequest(errors.New("invalid email or token"))
		}
		return user.User{}, fmt.Errorf("fetching token: %w", err)
	}

	if t.UserID != u.ID {
		return user.User{}, weberr.BadRequest(errors.New("invalid email or token"))
	}

	return u, nil
}
