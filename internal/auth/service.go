package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned by Login when the email or password does
// not match the configured operator account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Config configures the single-operator authentication service.
type Config struct {
	JWTSecret            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	MinPasswordLength    int
	OperatorEmail        string
	OperatorPasswordHash string
}

// Service authenticates the one operator account configured for this
// deployment and issues JWTs. There is no registration or per-user storage:
// the mining service has a single operator, not a tenant base.
type Service struct {
	jwtManager      *JWTManager
	passwordManager *PasswordManager
	config          Config
}

// NewService creates a new authentication service.
func NewService(cfg Config) *Service {
	if cfg.AccessTokenDuration == 0 {
		cfg.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.RefreshTokenDuration == 0 {
		cfg.RefreshTokenDuration = 7 * 24 * time.Hour
	}

	return &Service{
		jwtManager:      NewJWTManager(cfg.JWTSecret, cfg.AccessTokenDuration, cfg.RefreshTokenDuration),
		passwordManager: NewPasswordManager(DefaultBcryptCost, cfg.MinPasswordLength),
		config:          cfg,
	}
}

// GetJWTManager returns the JWT manager for use in middleware.
func (s *Service) GetJWTManager() *JWTManager {
	return s.jwtManager
}

// Login verifies the supplied credentials against the configured operator
// account and returns a token pair on success.
func (s *Service) Login(_ context.Context, email, password string) (*TokenPair, error) {
	if email != s.config.OperatorEmail {
		return nil, ErrInvalidCredentials
	}
	if !s.passwordManager.VerifyPassword(password, s.config.OperatorPasswordHash) {
		return nil, ErrInvalidCredentials
	}

	claims := OperatorClaims{
		OperatorID: "operator",
		Email:      email,
		Role:       "admin",
	}
	return s.jwtManager.GenerateTokenPair(claims)
}
