package models

import (
	"time"
)

// Transaction is one posted account movement. Positive amounts are spending,
// negative amounts are income.
type Transaction struct {
	TransactionID string    `firestore:"transactionId" json:"transactionId"`
	AccountID     string    `firestore:"accountId" json:"accountId"`
	BankID        string    `firestore:"bankId,omitempty" json:"bankId,omitempty"`
	Name          string    `firestore:"name" json:"name"` // merchant or payee
	Amount        float64   `firestore:"amount" json:"amount"`
	Currency      string    `firestore:"currency" json:"currency"`
	Date          string    `firestore:"date" json:"date"` // YYYY-MM-DD
	Category      string    `firestore:"category,omitempty" json:"category,omitempty"`
	Pending       bool      `firestore:"pending" json:"pending"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (t *Transaction) IsSpending() bool { return t.Amount > 0 }
func (t *Transaction) IsIncome() bool   { return t.Amount < 0 }
