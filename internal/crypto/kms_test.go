package crypto

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"

	"github.com/GregMSThompson/finance-widgets/internal/errs"
)

// fakeKMS "encrypts" by reversing the bytes.
type fakeKMS struct {
	lastKey string
	err     error
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func (f *fakeKMS) Encrypt(_ context.Context, req *kmspb.EncryptRequest, _ ...gax.CallOption) (*kmspb.EncryptResponse, error) {
	f.lastKey = req.Name
	if f.err != nil {
		return nil, f.err
	}
	return &kmspb.EncryptResponse{Ciphertext: reverse(req.Plaintext)}, nil
}

func (f *fakeKMS) Decrypt(_ context.Context, req *kmspb.DecryptRequest, _ ...gax.CallOption) (*kmspb.DecryptResponse, error) {
	f.lastKey = req.Name
	if f.err != nil {
		return nil, f.err
	}
	return &kmspb.DecryptResponse{Plaintext: reverse(req.Ciphertext)}, nil
}

func TestRoundTrip(t *testing.T) {
	fake := &fakeKMS{}
	k := NewKMS(fake, "keys/bank-tokens")

	sealed, err := k.Encrypt(context.Background(), "access-sandbox-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "access-sandbox-123" || fake.lastKey != "keys/bank-tokens" {
		t.Fatalf("unexpected ciphertext %q with key %q", sealed, fake.lastKey)
	}
	plain, err := k.Decrypt(context.Background(), sealed)
	if err != nil || plain != "access-sandbox-123" {
		t.Fatalf("decrypt = %q, %v", plain, err)
	}
}

func TestDecryptRejectsNonBase64(t *testing.T) {
	k := NewKMS(&fakeKMS{}, "keys/bank-tokens")

	_, err := k.Decrypt(context.Background(), "not base64!")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEncryptFailureIsExternal(t *testing.T) {
	k := NewKMS(&fakeKMS{err: errors.New("permission denied")}, "keys/bank-tokens")

	_, err := k.Encrypt(context.Background(), "x")
	var ext *errs.ExternalServiceError
	if !errors.As(err, &ext) || ext.Service != "kms" {
		t.Fatalf("expected kms ExternalServiceError, got %v", err)
	}
}
