package models

import (
	"time"
)

// Bank is one linked institution (a Plaid item). Its transactions and
// accounts feed the query resolver.
type Bank struct {
	BankID      string `firestore:"bankId" json:"bankId"`
	Institution string `firestore:"institution" json:"institution"`
	Status      string `firestore:"status" json:"status"` // "active" or "error"
	// AccessToken is KMS ciphertext at rest and plaintext in memory.
	AccessToken string     `firestore:"accessToken" json:"-"`
	LastSynced  *time.Time `firestore:"lastSynced,omitempty" json:"lastSynced,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt" json:"updatedAt"`
}
