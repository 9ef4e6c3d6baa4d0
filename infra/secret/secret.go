package secret

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/secretmanager"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/finance-widgets/infra/platform"
)

// Add stores value as the first version of secretID and grants sa read
// access to that secret only. It returns the secret id.
func Add(ctx *pulumi.Context,
	p *platform.Platform,
	sa *serviceaccount.Account,
	resourceName, secretID string,
	value pulumi.StringInput) (pulumi.StringOutput, error) {
	s, err := secretmanager.NewSecret(ctx, resourceName, &secretmanager.SecretArgs{
		SecretId: pulumi.String(secretID),
		Replication: &secretmanager.SecretReplicationArgs{
			Auto: &secretmanager.SecretReplicationAutoArgs{},
		},
	},
		pulumi.Provider(p.Provider),
		p.DependsOn("secretManager"),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	_, err = secretmanager.NewSecretVersion(ctx, resourceName+"Version", &secretmanager.SecretVersionArgs{
		Secret:     s.ID(),
		SecretData: value,
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	_, err = secretmanager.NewSecretIamMember(ctx, resourceName+"Accessor", &secretmanager.SecretIamMemberArgs{
		SecretId: s.SecretId,
		Role:     pulumi.String("roles/secretmanager.secretAccessor"),
		Member:   sa.Member,
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	return s.SecretId, nil
}
