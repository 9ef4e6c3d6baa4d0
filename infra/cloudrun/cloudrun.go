package cloudrun

import (
	"strconv"

	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/cloudrun"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/GregMSThompson/finance-widgets/infra/platform"
)

const imageName = "widget-api"

// BankLinking is set when the stack has Plaid credentials configured.
type BankLinking struct {
	ClientID    string
	SecretID    pulumi.StringOutput
	Environment string
	KeyName     pulumi.StringOutput
}

type Service struct {
	Account *serviceaccount.Account
	URL     pulumi.StringOutput
}

// ServiceAccount creates the identity the widget API runs as, with
// read/write access to Firestore.
func ServiceAccount(ctx *pulumi.Context, p *platform.Platform) (*serviceaccount.Account, error) {
	sa, err := serviceaccount.NewAccount(ctx, "widgetServiceAccount", &serviceaccount.AccountArgs{
		AccountId:   pulumi.String("widget-api"),
		DisplayName: pulumi.String("Widget API"),
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return nil, err
	}

	_, err = projects.NewIAMMember(ctx, "firestoreAccess", &projects.IAMMemberArgs{
		Project: pulumi.String(p.ProjectID),
		Role:    pulumi.String("roles/datastore.user"),
		Member:  sa.Member,
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return nil, err
	}
	return sa, nil
}

// Deploy builds the API image and runs it on Cloud Run. bank may be nil.
func Deploy(ctx *pulumi.Context,
	p *platform.Platform,
	sa *serviceaccount.Account,
	bank *BankLinking,
	res ...pulumi.Resource) (*Service, error) {
	img, err := buildImage(ctx, p)
	if err != nil {
		return nil, err
	}

	svc, err := newService(ctx, p, img, sa, bank, res...)
	if err != nil {
		return nil, err
	}

	// Identity Platform checks tokens in front of the service; the API
	// verifies them again.
	_, err = cloudrun.NewIamMember(ctx, "widgetInvoker", &cloudrun.IamMemberArgs{
		Service:  svc.Name,
		Location: pulumi.String(p.Region),
		Role:     pulumi.String("roles/run.invoker"),
		Member:   pulumi.String("allUsers"),
	}, pulumi.Provider(p.Provider))
	if err != nil {
		return nil, err
	}

	return &Service{
		Account: sa,
		URL: svc.Statuses.Index(pulumi.Int(0)).Url().ApplyT(func(u *string) string {
			if u == nil {
				return ""
			}
			return *u
		}).(pulumi.StringOutput),
	}, nil
}

func buildImage(ctx *pulumi.Context, p *platform.Platform) (*docker.Image, error) {
	tag, err := platform.SourceHash("..")
	if err != nil {
		return nil, err
	}

	return docker.NewImage(ctx, "widgetApiImage", &docker.ImageArgs{
		Build: docker.DockerBuildArgs{
			Platform:   pulumi.String("linux/amd64"),
			Context:    pulumi.String(".."),
			Dockerfile: pulumi.String("../cmd/api/Dockerfile"),
		},
		ImageName: pulumi.String(p.ImageName(imageName, tag)),
	}, pulumi.DependsOn([]pulumi.Resource{p.Registry}))
}

func env(name string, value pulumi.StringPtrInput) *cloudrun.ServiceTemplateSpecContainerEnvArgs {
	return &cloudrun.ServiceTemplateSpecContainerEnvArgs{Name: pulumi.String(name), Value: value}
}

func newService(ctx *pulumi.Context,
	p *platform.Platform,
	img *docker.Image,
	sa *serviceaccount.Account,
	bank *BankLinking,
	res ...pulumi.Resource) (*cloudrun.Service, error) {
	crCfg := config.New(ctx, "cloudrun")
	widgetCfg := config.New(ctx, "widgets")

	timeout, err := strconv.Atoi(crCfg.Require("timeout"))
	if err != nil {
		return nil, err
	}

	envs := cloudrun.ServiceTemplateSpecContainerEnvArray{
		env("PROJECTID", pulumi.String(p.ProjectID)),
		env("LOGLEVEL", pulumi.String(crCfg.Get("logLevel"))),
		env("WIDGETCOLLECTION", pulumi.String(widgetCfg.Get("collection"))),
		env("REFRESHTIMEOUT", pulumi.String(widgetCfg.Get("refreshTimeout"))),
	}
	if bank != nil {
		envs = append(envs,
			env("PLAIDCLIENTID", pulumi.String(bank.ClientID)),
			env("PLAIDSECRETID", bank.SecretID),
			env("PLAIDENVIRONMENT", pulumi.String(bank.Environment)),
			env("KMSKEYNAME", bank.KeyName),
		)
	}

	return cloudrun.NewService(ctx, "widgetApiService", &cloudrun.ServiceArgs{
		Location: pulumi.String(p.Region),
		Template: &cloudrun.ServiceTemplateArgs{
			Metadata: &cloudrun.ServiceTemplateMetadataArgs{
				Annotations: pulumi.StringMap{
					"run.googleapis.com/launch-stage":          pulumi.String("BETA"),
					"run.googleapis.com/identity-provider":     pulumi.String("firebase"),
					"autoscaling.knative.dev/minScale":         pulumi.String(crCfg.Require("minScale")),
					"autoscaling.knative.dev/maxScale":         pulumi.String(crCfg.Require("maxScale")),
					"run.googleapis.com/cpu":                   pulumi.String(crCfg.Require("cpu")),
					"run.googleapis.com/memory":                pulumi.String(crCfg.Require("memory")),
					"run.googleapis.com/cpu-throttling":        pulumi.String("true"),
					"run.googleapis.com/container-concurrency": pulumi.String(crCfg.Require("concurrency")),
				},
			},
			Spec: &cloudrun.ServiceTemplateSpecArgs{
				ServiceAccountName: sa.Email,
				TimeoutSeconds:     pulumi.Int(timeout),
				Containers: cloudrun.ServiceTemplateSpecContainerArray{
					&cloudrun.ServiceTemplateSpecContainerArgs{
						Image: img.ImageName,
						Ports: cloudrun.ServiceTemplateSpecContainerPortArray{
							&cloudrun.ServiceTemplateSpecContainerPortArgs{ContainerPort: pulumi.Int(8080)},
						},
						Envs: envs,
					},
				},
			},
		},
	},
		pulumi.Provider(p.Provider),
		p.DependsOn("run"),
		pulumi.DependsOn(res),
	)
}
