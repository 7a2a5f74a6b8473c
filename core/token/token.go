package token

import (
	"crypto/sha256"
	"time"
)

const (
	ScopeActivation = "activation"
	ScopeRecovery   = "recovery"
)

// Mailer delivers the token to the user out of band.
type Mailer interface {
	SendActivationToken(email string, token string) error
	SendRecoveryToken(email string, token string) error
}

// Token is stored hashed; the plaintext only ever travels in the email.
type Token struct {
	Hash   []byte    `db:"token_hash"`
	UserID string    `db:"user_id"`
	Scope  string    `db:"scope"`
	Expiry time.Time `db:"expiry"`
}

func Hash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}

type TokenNew struct {
	Email string `json:"email" validate:"required,email"`
	Scope string `json:"scope" validate:"required,oneof=activation recovery"`
}

type Activation struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,len=26"`
}

type Recovery struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required,len=26"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
