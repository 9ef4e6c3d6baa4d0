package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/helpers"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const (
	BankStatusActive = "active"
	BankStatusError  = "error"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type bankStore interface {
	Create(ctx context.Context, uid string, bank *models.Bank) error
	List(ctx context.Context, uid string) ([]*models.Bank, error)
	Get(ctx context.Context, uid, bankID string) (*models.Bank, error)
	MarkSynced(ctx context.Context, uid, bankID, status string, at time.Time) error
	Delete(ctx context.Context, uid, bankID string) error
}

type transactionSyncStore interface {
	UpsertBatch(ctx context.Context, uid string, txs []models.Transaction) error
	DeleteBatch(ctx context.Context, uid string, ids []string) error
	DeleteByBank(ctx context.Context, uid, bankID string) error
	GetCursor(ctx context.Context, uid, bankID string) (string, error)
	SetCursor(ctx context.Context, uid, bankID, cursor string) error
	DeleteCursor(ctx context.Context, uid, bankID string) error
}

type accountSyncStore interface {
	Upsert(ctx context.Context, uid string, a *models.Account) error
	DeleteByBank(ctx context.Context, uid, bankID string) error
}

// plaidClient is the Plaid SDK adapter surface used by this service.
type plaidClient interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (itemID, accessToken string, err error)
	SyncTransactions(ctx context.Context, bankID, accessToken string, cursor *string) (dto.SyncPage, error)
	Accounts(ctx context.Context, bankID, accessToken string) ([]models.Account, error)
}

// bankService links banks and copies their transactions and balances into
// the collections the query resolver reads.
type bankService struct {
	plaid    plaidClient
	banks    bankStore
	txs      transactionSyncStore
	accounts accountSyncStore
	inflight singleflight.Group
	clockNow func() time.Time
}

func NewBankService(plaid plaidClient, banks bankStore, txs transactionSyncStore, accounts accountSyncStore) *bankService {
	return &bankService{
		plaid:    plaid,
		banks:    banks,
		txs:      txs,
		accounts: accounts,
		clockNow: time.Now,
	}
}

func (s *bankService) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	return s.plaid.CreateLinkToken(ctx, uid)
}

// LinkBank exchanges a Link public token and stores the new bank. The first
// sync is left to the caller.
func (s *bankService) LinkBank(ctx context.Context, uid string, req dto.LinkBankRequest) (*models.Bank, error) {
	if req.PublicToken == "" {
		return nil, errs.NewValidationError("publicToken is required")
	}
	itemID, accessToken, err := s.plaid.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		return nil, err
	}

	now := s.clockNow()
	bank := &models.Bank{
		BankID:      itemID,
		Institution: req.InstitutionName,
		Status:      BankStatusActive,
		AccessToken: accessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.banks.Create(ctx, uid, bank); err != nil {
		return nil, err
	}

	log, _ := logger.With(ctx, "bank_id", itemID)
	log.Info("bank linked", "institution", req.InstitutionName)
	return bank, nil
}

func (s *bankService) ListBanks(ctx context.Context, uid string) ([]*models.Bank, error) {
	return s.banks.List(ctx, uid)
}

// DeleteBank removes the bank together with everything synced from it.
func (s *bankService) DeleteBank(ctx context.Context, uid, bankID string) error {
	if _, err := s.banks.Get(ctx, uid, bankID); err != nil {
		return err
	}
	// TODO: make the cleanup atomic so a failure midway cannot leave orphaned transactions.
	if err := s.txs.DeleteByBank(ctx, uid, bankID); err != nil {
		return err
	}
	if err := s.txs.DeleteCursor(ctx, uid, bankID); err != nil {
		return err
	}
	if err := s.accounts.DeleteByBank(ctx, uid, bankID); err != nil {
		return err
	}
	if err := s.banks.Delete(ctx, uid, bankID); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("bank deleted", "bank_id", bankID)
	return nil
}

// Sync pulls new transactions and balances for one bank, or for all of the
// user's banks when bankID is nil. Concurrent calls for the same target share
// one run.
func (s *bankService) Sync(ctx context.Context, uid string, bankID *string) (dto.SyncResult, error) {
	key := uid + "/" + helpers.Value(bankID)
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.sync(ctx, uid, bankID)
	})
	if err != nil {
		return dto.SyncResult{}, err
	}
	return v.(dto.SyncResult), nil
}

func (s *bankService) sync(ctx context.Context, uid string, bankID *string) (dto.SyncResult, error) {
	var result dto.SyncResult
	log := logger.FromContext(ctx)

	var banks []*models.Bank
	if bankID != nil {
		b, err := s.banks.Get(ctx, uid, *bankID)
		if err != nil {
			return result, err
		}
		banks = []*models.Bank{b}
	} else {
		all, err := s.banks.List(ctx, uid)
		if err != nil {
			return result, err
		}
		banks = all
	}
	log.Info("bank sync started", "bank_count", len(banks))

	for _, b := range banks {
		cursor, err := s.syncBank(ctx, uid, b, &result)
		if err != nil {
			log.Warn("bank sync failed", "bank_id", b.BankID, "error", err)
			if markErr := s.banks.MarkSynced(ctx, uid, b.BankID, BankStatusError, s.clockNow()); markErr != nil {
				log.Warn("bank status update failed", "bank_id", b.BankID, "error", markErr)
			}
			return result, err
		}
		if err := s.banks.MarkSynced(ctx, uid, b.BankID, BankStatusActive, s.clockNow()); err != nil {
			return result, err
		}
		result.BanksSynced++
		if bankID != nil {
			result.Cursor = cursor
		}
	}

	log.Info("bank sync completed",
		"banks_synced", result.BanksSynced,
		"transactions_upserted", result.TransactionsUpserted,
		"transactions_removed", result.TransactionsRemoved)
	return result, nil
}

// syncBank drains the bank's change feed from its stored cursor, then
// refreshes account balances. The cursor is saved only after every page is
// written.
func (s *bankService) syncBank(ctx context.Context, uid string, b *models.Bank, result *dto.SyncResult) (string, error) {
	if b.AccessToken == "" {
		return "", errs.NewValidationError("access token missing for bank " + b.BankID)
	}

	stored, err := s.txs.GetCursor(ctx, uid, b.BankID)
	if err != nil {
		return "", err
	}
	cursor := helpers.NonZero(stored)

	latest := stored
	for hasMore := true; hasMore; {
		page, err := s.plaid.SyncTransactions(ctx, b.BankID, b.AccessToken, cursor)
		if err != nil {
			return "", err
		}
		if err := s.txs.UpsertBatch(ctx, uid, page.Transactions); err != nil {
			return "", err
		}
		if err := s.txs.DeleteBatch(ctx, uid, page.RemovedIDs); err != nil {
			return "", err
		}
		result.TransactionsUpserted += len(page.Transactions)
		result.TransactionsRemoved += len(page.RemovedIDs)

		latest = page.Cursor
		cursor = helpers.Ptr(latest)
		hasMore = page.HasMore
	}
	if latest != "" && latest != stored {
		if err := s.txs.SetCursor(ctx, uid, b.BankID, latest); err != nil {
			return "", err
		}
	}

	accounts, err := s.plaid.Accounts(ctx, b.BankID, b.AccessToken)
	if err != nil {
		return "", err
	}
	for i := range accounts {
		if err := s.accounts.Upsert(ctx, uid, &accounts[i]); err != nil {
			return "", err
		}
	}
	result.AccountsUpdated += len(accounts)
	return latest, nil
}
