package model

import (
	"time"
)

// StartingCredits is granted to every account at signup.
const StartingCredits = 500

type Account struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Credits       int       `db:"credits" json:"credits"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateAccountParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Credits      int
}
