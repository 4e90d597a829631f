// Package auth implements account registration, password and Google sign-in,
// and bearer-token verification for the HTTP API.
//
// Tokens are HS256 JWTs carrying the user id as subject. Passwords are stored
// as bcrypt hashes; Google accounts carry no local password.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flashflow-ai/flashflow/pkg/profile"
)

// Sentinel errors returned by [Service] operations.
var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. The two cases are deliberately not
	// distinguished in the error.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrWeakPassword is returned by Register for passwords shorter than
	// eight characters.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
)

// defaultTokenTTL applies when the configured TTL is zero.
const defaultTokenTTL = 24 * time.Hour

// GoogleVerifier validates a Google ID token and returns the identity it
// asserts. Implementations call Google's tokeninfo endpoint or verify the
// token signature locally.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

// GoogleIdentity is the subset of Google ID token claims the service uses.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// Result is the outcome of a successful sign-in.
type Result struct {
	User  *profile.User
	Token string

	// NeedsProfile is true when the account was just created through Google
	// sign-in and has no mobile number or date of birth on record yet. The
	// client uses it to route to the profile completion form.
	NeedsProfile bool
}

// Service issues and verifies tokens against a [profile.Store].
type Service struct {
	store    profile.Store
	secret   []byte
	tokenTTL time.Duration
	google   GoogleVerifier
	now      func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithTokenTTL overrides the default 24h token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithGoogleVerifier installs the verifier backing Google sign-in. Without
// one, GoogleSignIn returns an error.
func WithGoogleVerifier(v GoogleVerifier) Option {
	return func(s *Service) { s.google = v }
}

// withClock overrides the time source for tests.
func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an auth [Service] signing tokens with secret.
func New(store profile.Store, secret string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Email       string
	Password    string
	Name        string
	Mobile      string
	DateOfBirth string
}

// Register creates a password account and returns a signed-in [Result].
// Returns [profile.ErrEmailTaken] when the email is already registered.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("auth: invalid email %q", p.Email)
	}
	if len(p.Password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u := &profile.User{
		Email:        email,
		Name:         strings.TrimSpace(p.Name),
		Mobile:       strings.TrimSpace(p.Mobile),
		DateOfBirth:  strings.TrimSpace(p.DateOfBirth),
		PasswordHash: string(hash),
		Provider:     profile.AuthPassword,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Token: token}, nil
}

// Login verifies email and password and returns a signed-in [Result].
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, profile.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		// Google account without a local password.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Token: token}, nil
}

// GoogleSignIn verifies a Google ID token, creating the account on first
// sign-in. NeedsProfile is set when the account still lacks a mobile number
// or date of birth.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*Result, error) {
	if s.google == nil {
		return nil, errors.New("auth: google sign-in is not configured")
	}

	ident, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("auth: verify google token: %w", err)
	}
	if ident.Email == "" {
		return nil, ErrInvalidToken
	}

	u, err := s.store.GetByEmail(ctx, ident.Email)
	if errors.Is(err, profile.ErrNotFound) {
		u = &profile.User{
			Email:    strings.ToLower(ident.Email),
			Name:     ident.Name,
			Provider: profile.AuthGoogle,
		}
		if err := s.store.Create(ctx, u); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &Result{
		User:         u,
		Token:        token,
		NeedsProfile: u.Mobile == "" || u.DateOfBirth == "",
	}, nil
}

// VerifyToken parses and validates a bearer token, returning the user id it
// carries. Returns [ErrInvalidToken] for malformed, expired or mis-signed
// tokens.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// issueToken signs an HS256 JWT with the user id as subject.
func (s *Service) issueToken(id uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		Issuer:    "flashflow",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
