package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/slofy/reviewmate/internal/model"
	"github.com/slofy/reviewmate/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

type AuthService struct {
	accountRepo repository.AccountRepository
	secret      []byte
}

func NewAuthService(accountRepo repository.AccountRepository, secret string) *AuthService {
	return &AuthService{accountRepo: accountRepo, secret: []byte(secret)}
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.Account, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accountRepo.Create(ctx, model.CreateAccountParams{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Credits:      model.StartingCredits,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}

	log.Info().
		Str("accountId", account.ID).
		Str("email", account.Email).
		Msg("account created")

	return account, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Account, string, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}

	return account, token, nil
}

// Authenticate resolves a bearer token to the account it identifies.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	account, err := s.accountRepo.FindByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return account, err
}

func (s *AuthService) issueToken(account *model.Account) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
		Email: account.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
