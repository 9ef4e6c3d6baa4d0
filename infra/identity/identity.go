package identity

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/identityplatform"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/finance-widgets/infra/platform"
)

// Setup turns on Identity Platform so the API can verify Firebase ID tokens.
// Email sign-in is the only provider the dashboard offers.
func Setup(ctx *pulumi.Context, p *platform.Platform) (*identityplatform.Config, error) {
	return identityplatform.NewConfig(ctx, "identityPlatformConfig", &identityplatform.ConfigArgs{
		SignIn: &identityplatform.ConfigSignInArgs{
			Email: &identityplatform.ConfigSignInEmailArgs{
				Enabled:          pulumi.Bool(true),
				PasswordRequired: pulumi.Bool(true),
			},
		},
		AuthorizedDomains: pulumi.StringArray{
			pulumi.String("localhost"),
			pulumi.Sprintf("%s.firebaseapp.com", p.ProjectID),
			pulumi.Sprintf("%s.web.app", p.ProjectID),
		},
	},
		pulumi.Provider(p.Provider),
		p.DependsOn("identity"),
	)
}
