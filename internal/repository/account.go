package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/slofy/reviewmate/internal/model"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	GetCredits(ctx context.Context, email string) (int, error)
	// DeductCredits decrements the balance only if it stays non-negative.
	// Returns ErrInsufficientCredits when the balance is too low and
	// ErrNotFound when no account matches the email.
	DeductCredits(ctx context.Context, email string, amount int) (int, error)
	AddCredits(ctx context.Context, email string, amount int) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AccountRepository
}

type accountRepo struct {
	db sqlxDB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) WithTx(tx *sqlx.Tx) AccountRepository {
	return &accountRepo{db: tx}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE id = $1
	`, id)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE email = $1
	`, email)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO accounts (id, name, email, password_hash, credits)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.ID, params.Name, params.Email, params.PasswordHash, params.Credits)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetCredits(ctx context.Context, email string) (int, error) {
	var credits int
	err := r.db.GetContext(ctx, &credits, `
		SELECT credits FROM accounts WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return credits, err
}

// DeductCredits relies on the conditional UPDATE for correctness under
// concurrent calls: the WHERE clause guarantees the balance never commits
// below zero, without read-then-write.
func (r *accountRepo) DeductCredits(ctx context.Context, email string, amount int) (int, error) {
	var credits int
	err := r.db.GetContext(ctx, &credits, `
		UPDATE accounts
		SET credits = credits - $2, updated_at = $3
		WHERE email = $1 AND credits >= $2
		RETURNING credits
	`, email, amount, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `
			SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)
		`, email); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, err
	}
	return credits, nil
}

func (r *accountRepo) AddCredits(ctx context.Context, email string, amount int) (int, error) {
	var credits int
	err := r.db.GetContext(ctx, &credits, `
		UPDATE accounts
		SET credits = credits + $2, updated_at = $3
		WHERE email = $1
		RETURNING credits
	`, email, amount, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return credits, nil
}
