package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

type accountStore struct {
	client *firestore.Client
}

func NewAccountStore(client *firestore.Client) *accountStore {
	return &accountStore{client: client}
}

func (s *accountStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("accounts")
}

func (s *accountStore) Upsert(ctx context.Context, uid string, a *models.Account) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	_, err := s.collection(uid).Doc(a.AccountID).Set(ctx, a)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save account", err)
	}
	return nil
}

// List returns the user's accounts, optionally narrowed to one account type.
func (s *accountStore) List(ctx context.Context, uid, accountType string) ([]*models.Account, error) {
	q := s.collection(uid).Query
	if accountType != "" {
		q = q.Where("type", "==", accountType)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list accounts", err)
	}
	accounts := make([]*models.Account, 0, len(docs))
	for _, d := range docs {
		var a models.Account
		if err := d.DataTo(&a); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse account data", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, nil
}

// DeleteByBank removes the accounts that belong to one linked bank.
func (s *accountStore) DeleteByBank(ctx context.Context, uid, bankID string) error {
	docs, err := s.collection(uid).Where("bankId", "==", bankID).Documents(ctx).GetAll()
	if err != nil {
		return errs.NewDatabaseError("read", "failed to list bank accounts", err)
	}
	for _, d := range docs {
		if _, err := d.Ref.Delete(ctx); err != nil {
			return errs.NewDatabaseError("delete", "failed to delete account", err)
		}
	}
	return nil
}
