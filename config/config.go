package config

import "time"

type Config struct {
	Web      Web
	DB       DB
	Cors     Cors
	Auth     Auth
	Oauth    Oauth
	Email    Email
	Razorpay Razorpay
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:studynotion"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string `conf:"default:"`
}

type Auth struct {
	ActivationRequired bool `conf:"default:false"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000/dashboard"`
	Google           OauthProvider
}

type OauthProvider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Email struct {
	APIKey        string        `conf:"mask"`
	FromName      string        `conf:"default:StudyNotion"`
	FromAddress   string        `conf:"default:no-reply@studynotion.dev"`
	ActivationURL string        `conf:"default:http://localhost:3000/activate"`
	RecoveryURL   string        `conf:"default:http://localhost:3000/recover"`
	TokenTimeout  time.Duration `conf:"default:15m"`
}

// Razorpay holds the payment gateway credentials. KeySecret is also the
// HMAC key used to verify callback signatures.
type Razorpay struct {
	KeyID     string
	KeySecret string `conf:"mask"`
}
