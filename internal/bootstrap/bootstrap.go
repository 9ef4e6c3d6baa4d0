package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"

	plaidclient "github.com/GregMSThompson/finance-widgets/internal/client/plaid"
	"github.com/GregMSThompson/finance-widgets/internal/config"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client

	// Set only when bank linking is enabled.
	Plaid *plaidclient.Adapter
	KMS   *gcpkms.KeyManagementClient
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	if cfg.ProjectID == "" {
		return bs, errors.New("PROJECTID is required")
	}
	bs.Firestore, err = InitFirestore(applicationCtx, bs.Log, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	if cfg.BankLinkingEnabled() {
		bs.Plaid, bs.KMS, err = InitBankLinking(applicationCtx, cfg)
		if err != nil {
			return bs, err
		}
	} else {
		bs.Log.Info("bank linking disabled", "reason", "PLAIDCLIENTID not set")
	}

	bs.Log.Info("bootstrap complete", "project_id", cfg.ProjectID, "bank_linking", cfg.BankLinkingEnabled())
	return bs, nil
}

// Close releases the Firestore and KMS connections.
func (bs *Bootstrap) Close() {
	if bs.KMS != nil {
		if err := bs.KMS.Close(); err != nil {
			bs.Log.Warn("kms close failed", "error", err)
		}
	}
	if bs.Firestore == nil {
		return
	}
	if err := bs.Firestore.Close(); err != nil {
		bs.Log.Warn("firestore close failed", "error", err)
	}
}
