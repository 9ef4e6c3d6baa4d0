package kms

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/kms"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/finance-widgets/infra/platform"
)

const (
	keyRingID = "widgets"
	tokenKey  = "bank-access-tokens"
)

// BankTokenKey creates the key bank access tokens are sealed with and lets
// the service account use it. The returned output is the full key name the
// service reads from KMSKEYNAME.
func BankTokenKey(ctx *pulumi.Context, p *platform.Platform, sa *serviceaccount.Account) (pulumi.StringOutput, error) {
	ring, err := kms.NewKeyRing(ctx, "widgetKeyRing", &kms.KeyRingArgs{
		Location: pulumi.String(p.Region),
		Name:     pulumi.String(keyRingID),
	},
		pulumi.Provider(p.Provider),
		p.DependsOn("kms"),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	key, err := kms.NewCryptoKey(ctx, "bankTokenKey", &kms.CryptoKeyArgs{
		KeyRing:        ring.ID(),
		Name:           pulumi.String(tokenKey),
		Purpose:        pulumi.String("ENCRYPT_DECRYPT"),
		RotationPeriod: pulumi.String("7776000s"), // 90 days
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	_, err = kms.NewCryptoKeyIAMMember(ctx, "bankTokenKeyUser", &kms.CryptoKeyIAMMemberArgs{
		CryptoKeyId: key.ID(),
		Role:        pulumi.String("roles/cloudkms.cryptoKeyEncrypterDecrypter"),
		Member:      sa.Member,
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	return key.ID().ToStringOutput(), nil
}
