package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slofy/reviewmate/internal/model"
	"github.com/slofy/reviewmate/internal/repository"
)

func seedAccount(t *testing.T, repo *memAccountRepo, email string, credits int) {
	t.Helper()
	_, err := repo.Create(context.Background(), model.CreateAccountParams{
		ID:      uuid.NewString(),
		Name:    "Test",
		Email:   email,
		Credits: credits,
	})
	require.NoError(t, err)
}

func TestCreditService(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc := NewCreditService(newMemAccountRepo())

		_, err := svc.Deduct(ctx, "a@example.com", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.Deduct(ctx, "a@example.com", -5)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.Add(ctx, "a@example.com", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("deduct then add restores the balance", func(t *testing.T) {
		repo := newMemAccountRepo()
		seedAccount(t, repo, "a@example.com", 100)
		svc := NewCreditService(repo)

		after, err := svc.Deduct(ctx, "a@example.com", 30)
		require.NoError(t, err)
		assert.Equal(t, 70, after)

		restored, err := svc.Add(ctx, "a@example.com", 30)
		require.NoError(t, err)
		assert.Equal(t, 100, restored)
	})

	t.Run("surfaces ledger errors", func(t *testing.T) {
		repo := newMemAccountRepo()
		seedAccount(t, repo, "a@example.com", 4)
		svc := NewCreditService(repo)

		_, err := svc.Deduct(ctx, "a@example.com", 5)
		assert.ErrorIs(t, err, repository.ErrInsufficientCredits)

		_, err = svc.Balance(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
