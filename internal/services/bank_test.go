package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/helpers"
)

// --- fakes ---

type fakePlaid struct {
	linkToken   string
	itemID      string
	accessToken string
	syncPages   []dto.SyncPage
	accounts    []models.Account
	exchangeErr error
	syncErr     error
	syncCursors []string
	syncCalls   int
}

func (f *fakePlaid) CreateLinkToken(_ context.Context, _ string) (string, error) {
	return f.linkToken, nil
}

func (f *fakePlaid) ExchangePublicToken(_ context.Context, _ string) (string, string, error) {
	return f.itemID, f.accessToken, f.exchangeErr
}

func (f *fakePlaid) SyncTransactions(_ context.Context, _, _ string, cursor *string) (dto.SyncPage, error) {
	f.syncCursors = append(f.syncCursors, helpers.Value(cursor))
	if f.syncErr != nil {
		return dto.SyncPage{}, f.syncErr
	}
	if f.syncCalls >= len(f.syncPages) {
		return dto.SyncPage{}, nil
	}
	page := f.syncPages[f.syncCalls]
	f.syncCalls++
	return page, nil
}

func (f *fakePlaid) Accounts(_ context.Context, _, _ string) ([]models.Account, error) {
	return f.accounts, nil
}

type fakeBankStore struct {
	banks   map[string]*models.Bank
	created []*models.Bank
	status  map[string]string
	deleted []string
}

func newFakeBankStore(banks ...*models.Bank) *fakeBankStore {
	f := &fakeBankStore{banks: map[string]*models.Bank{}, status: map[string]string{}}
	for _, b := range banks {
		f.banks[b.BankID] = b
	}
	return f
}

func (f *fakeBankStore) Create(_ context.Context, _ string, bank *models.Bank) error {
	f.created = append(f.created, bank)
	f.banks[bank.BankID] = bank
	return nil
}

func (f *fakeBankStore) List(_ context.Context, _ string) ([]*models.Bank, error) {
	out := make([]*models.Bank, 0, len(f.banks))
	for _, b := range f.banks {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBankStore) Get(_ context.Context, _, bankID string) (*models.Bank, error) {
	b, ok := f.banks[bankID]
	if !ok {
		return nil, errs.NewNotFoundError("bank not found")
	}
	return b, nil
}

func (f *fakeBankStore) MarkSynced(_ context.Context, _, bankID, status string, _ time.Time) error {
	f.status[bankID] = status
	return nil
}

func (f *fakeBankStore) Delete(_ context.Context, _, bankID string) error {
	f.deleted = append(f.deleted, bankID)
	return nil
}

type fakeSyncTxStore struct {
	cursor    string
	setCursor string
	upserted  [][]models.Transaction
	removed   []string
	calls     []string
	upsertErr error
}

func (f *fakeSyncTxStore) UpsertBatch(_ context.Context, _ string, txs []models.Transaction) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if len(txs) > 0 {
		f.upserted = append(f.upserted, txs)
	}
	return nil
}

func (f *fakeSyncTxStore) DeleteBatch(_ context.Context, _ string, ids []string) error {
	f.removed = append(f.removed, ids...)
	return nil
}

func (f *fakeSyncTxStore) DeleteByBank(_ context.Context, _, bankID string) error {
	f.calls = append(f.calls, "txs:"+bankID)
	return nil
}

func (f *fakeSyncTxStore) GetCursor(_ context.Context, _, _ string) (string, error) {
	return f.cursor, nil
}

func (f *fakeSyncTxStore) SetCursor(_ context.Context, _, _, cursor string) error {
	f.setCursor = cursor
	return nil
}

func (f *fakeSyncTxStore) DeleteCursor(_ context.Context, _, bankID string) error {
	f.calls = append(f.calls, "cursor:"+bankID)
	return nil
}

type fakeAccountSyncStore struct {
	upserted []models.Account
	calls    []string
}

func (f *fakeAccountSyncStore) Upsert(_ context.Context, _ string, a *models.Account) error {
	f.upserted = append(f.upserted, *a)
	return nil
}

func (f *fakeAccountSyncStore) DeleteByBank(_ context.Context, _, bankID string) error {
	f.calls = append(f.calls, "accounts:"+bankID)
	return nil
}

var bankNow = time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)

func newTestBankService(pl *fakePlaid, banks *fakeBankStore, txs *fakeSyncTxStore, accounts *fakeAccountSyncStore) *bankService {
	svc := NewBankService(pl, banks, txs, accounts)
	svc.clockNow = func() time.Time { return bankNow }
	return svc
}

// --- tests ---

func TestLinkBankStoresAccessToken(t *testing.T) {
	pl := &fakePlaid{itemID: "item-1", accessToken: "at-123"}
	banks := newFakeBankStore()
	svc := newTestBankService(pl, banks, &fakeSyncTxStore{}, &fakeAccountSyncStore{})

	b, err := svc.LinkBank(helpers.TestCtx(), "uid-1", dto.LinkBankRequest{PublicToken: "public-xyz", InstitutionName: "Chase"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BankID != "item-1" || b.Status != BankStatusActive || !b.CreatedAt.Equal(bankNow) {
		t.Fatalf("unexpected bank %+v", b)
	}
	if len(banks.created) != 1 || banks.created[0].AccessToken != "at-123" || banks.created[0].Institution != "Chase" {
		t.Fatalf("bank not stored: %+v", banks.created)
	}
}

func TestLinkBankRequiresPublicToken(t *testing.T) {
	svc := newTestBankService(&fakePlaid{}, newFakeBankStore(), &fakeSyncTxStore{}, &fakeAccountSyncStore{})

	_, err := svc.LinkBank(helpers.TestCtx(), "uid-1", dto.LinkBankRequest{})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSyncDrainsPagesFromStoredCursor(t *testing.T) {
	pl := &fakePlaid{
		syncPages: []dto.SyncPage{
			{Transactions: []models.Transaction{{TransactionID: "t1"}}, Cursor: "c1", HasMore: true},
			{Transactions: []models.Transaction{{TransactionID: "t2"}}, RemovedIDs: []string{"old"}, Cursor: "c2"},
		},
		accounts: []models.Account{{AccountID: "a1", Balance: 120}, {AccountID: "a2", Balance: -40}},
	}
	banks := newFakeBankStore(&models.Bank{BankID: "item-1", AccessToken: "at-123"})
	txs := &fakeSyncTxStore{cursor: "prev"}
	accounts := &fakeAccountSyncStore{}
	svc := newTestBankService(pl, banks, txs, accounts)

	res, err := svc.Sync(helpers.TestCtx(), "uid-1", helpers.Ptr("item-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := dto.SyncResult{BanksSynced: 1, TransactionsUpserted: 2, TransactionsRemoved: 1, AccountsUpdated: 2, Cursor: "c2"}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}
	if !reflect.DeepEqual(pl.syncCursors, []string{"prev", "c1"}) {
		t.Fatalf("unexpected cursors sent: %v", pl.syncCursors)
	}
	if txs.setCursor != "c2" || !reflect.DeepEqual(txs.removed, []string{"old"}) {
		t.Fatalf("cursor %q removed %v", txs.setCursor, txs.removed)
	}
	if len(accounts.upserted) != 2 || banks.status["item-1"] != BankStatusActive {
		t.Fatalf("accounts %+v status %q", accounts.upserted, banks.status["item-1"])
	}
}

func TestSyncFailureMarksBankAndKeepsCursor(t *testing.T) {
	pl := &fakePlaid{syncErr: errs.NewExternalServiceError("plaid", 500, "ITEM_LOGIN_REQUIRED", nil)}
	banks := newFakeBankStore(&models.Bank{BankID: "item-1", AccessToken: "at-123"})
	txs := &fakeSyncTxStore{cursor: "prev"}
	svc := newTestBankService(pl, banks, txs, &fakeAccountSyncStore{})

	_, err := svc.Sync(helpers.TestCtx(), "uid-1", nil)
	var ext *errs.ExternalServiceError
	if !errors.As(err, &ext) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if banks.status["item-1"] != BankStatusError {
		t.Fatalf("bank should be marked as errored, got %q", banks.status["item-1"])
	}
	if txs.setCursor != "" {
		t.Fatalf("cursor should not move on failure")
	}
}

func TestSyncUnknownBank(t *testing.T) {
	svc := newTestBankService(&fakePlaid{}, newFakeBankStore(), &fakeSyncTxStore{}, &fakeAccountSyncStore{})

	_, err := svc.Sync(helpers.TestCtx(), "uid-1", helpers.Ptr("nope"))
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteBankCleansUpInOrder(t *testing.T) {
	banks := newFakeBankStore(&models.Bank{BankID: "bank-1"})
	txs := &fakeSyncTxStore{}
	accounts := &fakeAccountSyncStore{}
	svc := newTestBankService(&fakePlaid{}, banks, txs, accounts)

	if err := svc.DeleteBank(helpers.TestCtx(), "uid-1", "bank-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(txs.calls, []string{"txs:bank-1", "cursor:bank-1"}) {
		t.Fatalf("unexpected tx calls: %v", txs.calls)
	}
	if !reflect.DeepEqual(accounts.calls, []string{"accounts:bank-1"}) || !reflect.DeepEqual(banks.deleted, []string{"bank-1"}) {
		t.Fatalf("accounts %v banks %v", accounts.calls, banks.deleted)
	}
}

func TestDeleteMissingBank(t *testing.T) {
	txs := &fakeSyncTxStore{}
	svc := newTestBankService(&fakePlaid{}, newFakeBankStore(), txs, &fakeAccountSyncStore{})

	err := svc.DeleteBank(helpers.TestCtx(), "uid-1", "nope")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(txs.calls) != 0 {
		t.Fatalf("nothing should be deleted")
	}
}
