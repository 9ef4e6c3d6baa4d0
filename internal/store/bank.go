package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
)

// tokenCipher seals access tokens at rest.
type tokenCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type bankStore struct {
	client *firestore.Client
	cipher tokenCipher
}

func NewBankStore(client *firestore.Client, cipher tokenCipher) *bankStore {
	return &bankStore{client: client, cipher: cipher}
}

func (s *bankStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("banks")
}

// Create stores the bank with its access token encrypted. The caller's value
// keeps the plaintext token.
func (s *bankStore) Create(ctx context.Context, uid string, bank *models.Bank) error {
	now := time.Now()
	if bank.CreatedAt.IsZero() {
		bank.CreatedAt = now
	}
	bank.UpdatedAt = now

	sealed, err := s.cipher.Encrypt(ctx, bank.AccessToken)
	if err != nil {
		return err
	}
	doc := *bank
	doc.AccessToken = sealed
	if _, err := s.collection(uid).Doc(bank.BankID).Set(ctx, doc); err != nil {
		return errs.NewDatabaseError("create", "failed to save bank", err)
	}
	return nil
}

// List returns the user's banks with access tokens decrypted.
func (s *bankStore) List(ctx context.Context, uid string) ([]*models.Bank, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list banks", err)
	}
	banks := make([]*models.Bank, 0, len(docs))
	for _, d := range docs {
		b, err := s.open(ctx, d)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, nil
}

func (s *bankStore) Get(ctx context.Context, uid, bankID string) (*models.Bank, error) {
	doc, err := s.collection(uid).Doc(bankID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("bank not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get bank", err)
	}
	return s.open(ctx, doc)
}

func (s *bankStore) open(ctx context.Context, doc *firestore.DocumentSnapshot) (*models.Bank, error) {
	var b models.Bank
	if err := doc.DataTo(&b); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse bank data", err)
	}
	token, err := s.cipher.Decrypt(ctx, b.AccessToken)
	if err != nil {
		return nil, err
	}
	b.AccessToken = token
	return &b, nil
}

// MarkSynced records a finished sync and the bank's resulting status.
func (s *bankStore) MarkSynced(ctx context.Context, uid, bankID, bankStatus string, at time.Time) error {
	_, err := s.collection(uid).Doc(bankID).Update(ctx, []firestore.Update{
		{Path: "status", Value: bankStatus},
		{Path: "lastSynced", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("bank not found")
		}
		return errs.NewDatabaseError("update", "failed to update bank", err)
	}
	return nil
}

func (s *bankStore) Delete(ctx context.Context, uid, bankID string) error {
	if _, err := s.collection(uid).Doc(bankID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete bank", err)
	}
	return nil
}
