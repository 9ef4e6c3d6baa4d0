package dto

import (
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// SyncResult summarizes one sync run across the user's banks.
type SyncResult struct {
	BanksSynced          int    `json:"banksSynced"`
	TransactionsUpserted int    `json:"transactionsUpserted"`
	TransactionsRemoved  int    `json:"transactionsRemoved"`
	AccountsUpdated      int    `json:"accountsUpdated"`
	Cursor               string `json:"cursor,omitempty"` // set when one bank was synced
}

// SyncPage is one page of /transactions/sync.
type SyncPage struct {
	Transactions []models.Transaction
	RemovedIDs   []string
	Cursor       string
	HasMore      bool
}

type LinkBankRequest struct {
	PublicToken     string `json:"publicToken"`
	InstitutionName string `json:"institutionName,omitempty"`
}

type SyncRequest struct {
	BankID *string `json:"bankId,omitempty"`
}

type PlaidEnvironment string

const (
	PlaidSandbox     PlaidEnvironment = "sandbox"
	PlaidDevelopment PlaidEnvironment = "development"
	PlaidProduction  PlaidEnvironment = "production"
)
