package bootstrap

import (
	"context"
	"errors"
	"fmt"

	gcpkms "cloud.google.com/go/kms/apiv1"

	plaidclient "github.com/GregMSThompson/finance-widgets/internal/client/plaid"
	"github.com/GregMSThompson/finance-widgets/internal/config"
)

// InitBankLinking builds the Plaid adapter and the KMS client that seals
// access tokens. The Plaid secret comes from the environment or, failing
// that, from Secret Manager.
func InitBankLinking(ctx context.Context, cfg *config.Config) (*plaidclient.Adapter, *gcpkms.KeyManagementClient, error) {
	if cfg.KMSKeyName == "" {
		return nil, nil, errors.New("KMSKEYNAME is required when PLAIDCLIENTID is set")
	}

	secret := cfg.PlaidSecret
	if secret == "" {
		if cfg.PlaidSecretID == "" {
			return nil, nil, errors.New("PLAIDSECRET or PLAIDSECRETID is required when PLAIDCLIENTID is set")
		}
		var err error
		secret, err = ReadSecret(ctx, cfg.ProjectID, cfg.PlaidSecretID)
		if err != nil {
			return nil, nil, err
		}
	}

	kmsClient, err := gcpkms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("kms client: %w", err)
	}
	return plaidclient.NewAdapter(cfg.PlaidClientID, secret, cfg.PlaidEnvironment), kmsClient, nil
}
