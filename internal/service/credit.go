package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be a positive integer")

// CreditService owns every balance mutation. Nothing else writes credits.
type CreditService struct {
	accountRepo repository.AccountRepository
}

func NewCreditService(accountRepo repository.AccountRepository) *CreditService {
	return &CreditService{accountRepo: accountRepo}
}

func (s *CreditService) Balance(ctx context.Context, email string) (int, error) {
	return s.accountRepo.GetCredits(ctx, email)
}

func (s *CreditService) Deduct(ctx context.Context, email string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newCredits, err := s.accountRepo.DeductCredits(ctx, email, amount)
	if err != nil {
		return 0, fmt.Errorf("deduct credits: %w", err)
	}

	log.Info().
		Str("email", email).
		Int("amount", amount).
		Int("newCredits", newCredits).
		Msg("credits deducted")

	return newCredits, nil
}

func (s *CreditService) Add(ctx context.Context, email string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newCredits, err := s.accountRepo.AddCredits(ctx, email, amount)
	if err != nil {
		return 0, fmt.Errorf("add credits: %w", err)
	}

	log.Info().
		Str("email", email).
		Int("amount", amount).
		Int("newCredits", newCredits).
		Msg("credits added")

	return newCredits, nil
}
