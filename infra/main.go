package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/GregMSThompson/finance-widgets/infra/cloudrun"
	"github.com/GregMSThompson/finance-widgets/infra/firestore"
	"github.com/GregMSThompson/finance-widgets/infra/identity"
	"github.com/GregMSThompson/finance-widgets/infra/kms"
	"github.com/GregMSThompson/finance-widgets/infra/platform"
	"github.com/GregMSThompson/finance-widgets/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		p, err := platform.Setup(ctx)
		if err != nil {
			return err
		}

		ident, err := identity.Setup(ctx, p)
		if err != nil {
			return err
		}

		db, err := firestore.Setup(ctx, p)
		if err != nil {
			return err
		}

		sa, err := cloudrun.ServiceAccount(ctx, p)
		if err != nil {
			return err
		}

		// bank linking is only deployed when the stack carries Plaid credentials
		var bank *cloudrun.BankLinking
		plaidCfg := config.New(ctx, "plaid")
		if clientID := plaidCfg.Get("clientId"); clientID != "" {
			secretID, err := secret.Add(ctx, p, sa, "plaidSecret", "plaid-secret", plaidCfg.RequireSecret("secret"))
			if err != nil {
				return err
			}
			keyName, err := kms.BankTokenKey(ctx, p, sa)
			if err != nil {
				return err
			}
			bank = &cloudrun.BankLinking{
				ClientID:    clientID,
				SecretID:    secretID,
				Environment: plaidCfg.Require("environment"),
				KeyName:     keyName,
			}
		}

		svc, err := cloudrun.Deploy(ctx, p, sa, bank, ident, db)
		if err != nil {
			return err
		}

		ctx.Export("url", svc.URL)
		ctx.Export("serviceAccount", svc.Account.Email)
		return nil
	})
}
