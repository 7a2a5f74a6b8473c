package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/studynotion-api/api"
	"github.com/irsalhamdi/studynotion-api/api/background"
	"github.com/irsalhamdi/studynotion-api/config"
	"github.com/irsalhamdi/studynotion-api/core/claims"
	"github.com/irsalhamdi/studynotion-api/core/user"
	"github.com/irsalhamdi/studynotion-api/database"
	"github.com/irsalhamdi/studynotion-api/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TestEnv runs the whole API against a throwaway postgres container,
// with the payment gateway and the mailer replaced by recording fakes.
type TestEnv struct {
	DB      *sqlx.DB
	Server  *httptest.Server
	URL     string
	Gateway *mockGateway
	Mails   *recordMailer
	Secret  string

	AdminEmail string
	AdminPass  string
	UserEmail  string
	UserPass   string
	UserID     string

	client *http.Client
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	res, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres: %w", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       net.JoinHostPort("localhost", res.GetPort("5432/tcp")),
		Name:       name,
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}

	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	session := scs.New()
	session.Lifetime = 24 * time.Hour

	bg := background.New(log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bg.Shutdown(ctx)
	})

	env := &TestEnv{
		DB:         db,
		Gateway:    &mockGateway{},
		Mails:      newRecordMailer(),
		Secret:     "test-razorpay-secret",
		AdminEmail: "admin@test.com",
		AdminPass:  "admin-password",
		UserEmail:  "user@test.com",
		UserPass:   "user-password",
	}

	mux := api.APIMux(api.APIConfig{
		Log:            log,
		DB:             db,
		Session:        session,
		Mailer:         env.Mails,
		TokenTimeout:   time.Hour,
		Background:     bg,
		Gateway:        env.Gateway,
		RazorpaySecret: env.Secret,
	})

	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)
	env.URL = env.Server.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	env.client = &http.Client{Jar: jar}

	if err := env.seed(); err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}

	return env, nil
}

// Client returns an http client holding the session cookie of the
// currently logged-in user.
func (e *TestEnv) Client() *http.Client {
	return e.client
}

func (e *TestEnv) seed() error {
	ctx := context.Background()

	admin, err := seedUser("Admin", e.AdminEmail, e.AdminPass, claims.RoleAdmin)
	if err != nil {
		return err
	}
	if err := user.Create(ctx, e.DB, admin); err != nil {
		return err
	}

	usr, err := seedUser("Student", e.UserEmail, e.UserPass, claims.RoleUser)
	if err != nil {
		return err
	}
	if err := user.Create(ctx, e.DB, usr); err != nil {
		return err
	}
	e.UserID = usr.ID

	return nil
}

func seedUser(name string, email string, password string, role string) (user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	return user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func Login(e *TestEnv, email string, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	r, err := http.NewRequest(http.MethodPost, e.URL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}

	w, err := e.Client().Do(r)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("can't login as %s: status code %s", email, w.Status)
	}

	return nil
}

func Logout(e *TestEnv) error {
	r, err := http.NewRequest(http.MethodPost, e.URL+"/auth/logout", nil)
	if err != nil {
		return err
	}

	w, err := e.Client().Do(r)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK && w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("can't logout: status code %s", w.Status)
	}

	return nil
}
