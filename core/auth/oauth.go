package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/studynotion-api/api/web"
	"github.com/irsalhamdi/studynotion-api/api/weberr"
	"github.com/irsalhamdi/studynotion-api/core/claims"
	"github.com/irsalhamdi/studynotion-api/core/user"
	"github.com/irsalhamdi/studynotion-api/random"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

const sessionOauthState = "oauth_state"

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	conf     oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders runs OIDC discovery for each configured provider.
func MakeProviders(ctx context.Context, configs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(configs))

	for _, pc := range configs {
		p, err := oidc.NewProvider(ctx, pc.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", pc.Name, err)
		}

		provs[pc.Name] = Provider{
			conf: oauth2.Config{
				ClientID:     pc.Client,
				ClientSecret: pc.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  pc.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: pc.Client}),
		}
	}

	return provs, nil
}

func HandleOauthLogin(session *scs.SessionManager, providers map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", web.Param(r, "provider")))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		session.Put(ctx, sessionOauthState, state)

		http.Redirect(w, r, prov.conf.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, providers map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", web.Param(r, "provider")))
		}

		state := session.PopString(ctx, sessionOauthState)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		tok, err := prov.conf.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return fmt.Errorf("exchanging oauth code: %w", err)
		}

		rawID, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token response is missing the id_token"))
		}

		idTok, err := prov.verifier.Verify(ctx, rawID)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying the id token: %w", err))
		}

		var profile struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := idTok.Claims(&profile); err != nil {
			return fmt.Errorf("extracting id token claims: %w", err)
		}

		u, err := user.FetchByEmail(ctx, db, profile.Email)
		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now().UTC()
			u = user.User{
				ID:    validate.GenerateID(),
				Name:  profile.Name,
				Email: profile.Email,
				Role:  claims.RoleUser,
				// No password: the account is reachable through oauth
				// or a recovery token only.
				PasswordHash: []byte{},
				ImageURL:     profile.Picture,
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := user.Create(ctx, db, u); err != nil {
				return fmt.Errorf("creating oauth user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := login(ctx, session, u.ID, u.Role); err != nil {
			return fmt.Errorf("logging in user[%s]: %w", u.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
		return nil
	}
}
