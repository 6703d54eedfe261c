package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrInvalid2FACode     = errors.New("invalid 2fa code")
	ErrUserNotFound       = errors.New("user not found")
)

var twoFACodePattern = regexp.MustCompile(`^\d{6}$`)

// Service is the session/identity provider: it registers users, verifies
// credentials, and issues/validates the opaque session credential (a signed
// JWT whose id is tracked in the token store so logout can revoke it).
type Service struct {
	users      *UserStore
	tokens     TokenStore
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewService(users *UserStore, tokens TokenStore, signingKey, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, email, password, confirmPassword, fullName string) (*entity.AuthResult, error) {
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := entity.UserProfile{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		KYCStatus: entity.KYCStatusPending,
	}

	if err := s.users.Create(profile, string(hash)); err != nil {
		return nil, err
	}

	return s.issueToken(ctx, profile)
}

func (s *Service) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	record, ok := s.users.Get(normalizeEmail(email))
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(ctx, record.Profile)
}

// ValidateToken verifies the credential signature and checks the token is
// still tracked, then returns a fresh profile so 2FA/KYC changes made after
// issuance are visible.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entity.UserProfile, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	email, ok, err := s.tokens.Load(ctx, claims.ID)
	if err != nil {
		logrus.Errorf("token store lookup failed: %v", err)
		return nil, ErrInvalidToken
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	record, ok := s.users.Get(email)
	if !ok {
		return nil, ErrInvalidToken
	}

	profile := record.Profile

	return &profile, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer)); err != nil {
		return ErrInvalidToken
	}

	return s.tokens.Delete(ctx, claims.ID)
}

func (s *Service) ChangePassword(ctx context.Context, email, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}

	email = normalizeEmail(email)
	record, ok := s.users.Get(email)
	if !ok {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.SetPasswordHash(email, string(hash))
}

// TwoFactorSetup is handed to the view so the user can scan the secret.
type TwoFactorSetup struct {
	Secret string
	URL    string
}

// Setup2FA generates a pending TOTP secret. The secret only becomes active
// once Verify2FA confirms the user can produce a code from it.
func (s *Service) Setup2FA(ctx context.Context, email string) (*TwoFactorSetup, error) {
	email = normalizeEmail(email)
	if _, ok := s.users.Get(email); !ok {
		return nil, ErrUserNotFound
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	if err := s.users.SetPendingTOTPSecret(email, key.Secret()); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *Service) Verify2FA(ctx context.Context, email, code string) error {
	if !twoFACodePattern.MatchString(code) {
		return ErrInvalid2FACode
	}

	email = normalizeEmail(email)
	record, ok := s.users.Get(email)
	if !ok {
		return ErrUserNotFound
	}

	if record.PendingTOTPSecret == "" || !totp.Validate(code, record.PendingTOTPSecret) {
		return ErrInvalid2FACode
	}

	return s.users.EnableTwoFactor(email)
}

func (s *Service) issueToken(ctx context.Context, profile entity.UserProfile) (*entity.AuthResult, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   profile.ID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.tokens.Save(ctx, claims.ID, profile.Email, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}

	return &entity.AuthResult{Token: token, Profile: profile}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
