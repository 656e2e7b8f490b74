// Package accounts implements dashboard signup and login: bcrypt password
// hashing at rest, HS256 session tokens for everything the app calls
// afterwards.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
)

const sessionTTL = 7 * 24 * time.Hour

type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountStore interface {
	// CreateAccount fails with ErrEmailTaken when the email exists.
	CreateAccount(ctx context.Context, a Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

type Service struct {
	store      AccountStore
	signingKey []byte
	now        func() time.Time
}

func New(store AccountStore, signingKey []byte) *Service {
	return &Service{store: store, signingKey: signingKey, now: time.Now}
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Account{}, apperr.New(apperr.KindInvalidRequest, "email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, apperr.Wrap(apperr.KindInternal, "password hash failed", err)
	}
	a := Account{
		ID:           "usr_" + uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Account{}, apperr.New(apperr.KindConflict, "email already registered")
		}
		return Account{}, apperr.FromStore(err)
	}
	a.PasswordHash = ""
	return a, nil
}

// Login verifies the password and issues a session token. Unknown email
// and wrong password return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
		}
		return "", apperr.FromStore(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":   a.ID,
		"email": a.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}
	return signed, nil
}

// VerifyToken validates a session token and returns the account id.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return "", apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	return sub, nil
}
