package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

type authTest struct {
	*TestEnv
}

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{env}

	at.signupOK(t, "New Student", "new@test.com", "some-password")

	// Signup logs the new user in right away.
	at.currentUserOK(t, "new@test.com")

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	at.signupFails(t, "New Student", "new@test.com", "some-password", http.StatusBadRequest)
	at.signupFails(t, "Short", "short@test.com", "2short", http.StatusBadRequest)

	at.loginFails(t, env.UserEmail, "wrong-password")
	at.loginFails(t, "nobody@test.com", "some-password")

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	at.currentUserOK(t, env.UserEmail)
	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	at.currentUserFails(t)
}

func TestTokenRecovery(t *testing.T) {
	env, err := NewTestEnv(t, "token_recovery_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{env}

	at.requestTokenOK(t, env.UserEmail, "recovery")

	tok := env.Mails.WaitRecovery(env.UserEmail, 5*time.Second)
	if tok == "" {
		t.Fatal("recovery token was never mailed")
	}

	// An unknown email gets the same answer and no mail.
	at.requestTokenOK(t, "nobody@test.com", "recovery")
	if got := env.Mails.WaitRecovery("nobody@test.com", 300*time.Millisecond); got != "" {
		t.Fatal("recovery token mailed for unknown email")
	}

	newPass := "a-brand-new-password"
	at.recoverOK(t, env.UserEmail, tok, newPass)

	at.loginFails(t, env.UserEmail, env.UserPass)
	if err := Login(env, env.UserEmail, newPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	// The token is burned after use.
	at.recoverFails(t, env.UserEmail, tok, "yet-another-password")
}

func TestTokenActivation(t *testing.T) {
	env, err := NewTestEnv(t, "token_activation_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{env}

	at.requestTokenOK(t, env.UserEmail, "activation")

	tok := env.Mails.WaitActivation(env.UserEmail, 5*time.Second)
	if tok == "" {
		t.Fatal("activation token was never mailed")
	}

	body, err := json.Marshal(map[string]string{
		"email": env.UserEmail,
		"token": tok,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, env.URL+"/tokens/activate", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't activate: status code %s", w.Status)
	}

	// Activation logs the user in.
	at.currentUserOK(t, env.UserEmail)
	if err := Logout(env); err != nil {
		t.Fatal(err)
	}
}

func (at *authTest) signupOK(t *testing.T, name string, email string, password string) {
	t.Helper()

	w := at.signup(t, name, email, password)
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't signup as %s: status code %s", email, w.Status)
	}
}

func (at *authTest) signupFails(t *testing.T, name string, email string, password string, want int) {
	t.Helper()

	w := at.signup(t, name, email, password)
	defer w.Body.Close()

	if w.StatusCode != want {
		t.Fatalf("signup as %s: status code %d, want %d", email, w.StatusCode, want)
	}
}

func (at *authTest) signup(t *testing.T, name string, email string, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, at.URL+"/auth/signup", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

func (at *authTest) loginFails(t *testing.T, email string, password string) {
	t.Helper()

	if err := Login(at.TestEnv, email, password); err == nil {
		t.Fatalf("login as %s with bad credentials succeeded", email)
	}
}

func (at *authTest) requestTokenOK(t *testing.T, email string, scope string) {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"email": email,
		"scope": scope,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, at.URL+"/tokens", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't request %s token: status code %s", scope, w.Status)
	}
}

func (at *authTest) recoverOK(t *testing.T, email string, token string, password string) {
	t.Helper()

	w := at.recover(t, email, token, password)
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't recover password: status code %s", w.Status)
	}
}

func (at *authTest) recoverFails(t *testing.T, email string, token string, password string) {
	t.Helper()

	w := at.recover(t, email, token, password)
	defer w.Body.Close()

	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("recovering with burned token: status code %d, want 400", w.StatusCode)
	}
}

func (at *authTest) recover(t *testing.T, email string, token string, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"token":    token,
		"password": password,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPost, at.URL+"/tokens/recover", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}

	return w
}

func (at *authTest) currentUserOK(t *testing.T, email string) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, at.URL+"/users/current", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't fetch current user: status code %s", w.Status)
	}

	var u struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(w.Body).Decode(&u); err != nil {
		t.Fatalf("cannot unmarshal current user: %v", err)
	}

	if u.Email != email {
		t.Fatalf("current user: got %q, want %q", u.Email, email)
	}
}

func (at *authTest) currentUserFails(t *testing.T) {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, at.URL+"/users/current", nil)
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusUnauthorized {
		t.Fatalf("fetching current user while logged out: status code %d, want 401", w.StatusCode)
	}
}
