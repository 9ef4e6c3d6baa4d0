package models

import (
	"time"
)

type Account struct {
	AccountID string    `firestore:"accountId" json:"accountId"`
	BankID    string    `firestore:"bankId,omitempty" json:"bankId,omitempty"`
	Name      string    `firestore:"name" json:"name"`
	Type      string    `firestore:"type" json:"type"` // e.g. "checking", "savings", "credit"
	Balance   float64   `firestore:"balance" json:"balance"`
	Currency  string    `firestore:"currency" json:"currency"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
