// Package platform holds the project-wide pieces every other stack component
// hangs off: the provider, enabled APIs and the image registry.
package platform

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/artifactregistry"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

const RepositoryID = "widgets"

// APIs the widget service calls at runtime.
var apis = map[string]string{
	"firestore":     "firestore.googleapis.com",
	"run":           "run.googleapis.com",
	"kms":           "cloudkms.googleapis.com",
	"secretManager": "secretmanager.googleapis.com",
	"identity":      "identitytoolkit.googleapis.com",
	"registry":      "artifactregistry.googleapis.com",
}

type Platform struct {
	ProjectID string
	Region    string
	Provider  *gcp.Provider
	Services  map[string]*projects.Service
	Registry  *artifactregistry.Repository
}

func Setup(ctx *pulumi.Context) (*Platform, error) {
	gcpCfg := config.New(ctx, "gcp")
	p := &Platform{
		ProjectID: gcpCfg.Require("project"),
		Region:    gcpCfg.Require("region"),
		Services:  make(map[string]*projects.Service, len(apis)),
	}

	var err error
	p.Provider, err = gcp.NewProvider(ctx, "gcpProvider", &gcp.ProviderArgs{
		Project:             pulumi.String(p.ProjectID),
		Region:              pulumi.String(p.Region),
		UserProjectOverride: pulumi.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	for name, api := range apis {
		svc, err := projects.NewService(ctx, name+"Service", &projects.ServiceArgs{
			Service:                  pulumi.String(api),
			DisableDependentServices: pulumi.Bool(false),
		}, pulumi.Provider(p.Provider))
		if err != nil {
			return nil, fmt.Errorf("enabling %s: %w", api, err)
		}
		p.Services[name] = svc
	}

	p.Registry, err = artifactregistry.NewRepository(ctx, "widgetRepository", &artifactregistry.RepositoryArgs{
		Format:       pulumi.String("DOCKER"),
		RepositoryId: pulumi.String(RepositoryID),
		Location:     pulumi.String(p.Region),
		Description:  pulumi.String("Widget service images"),
	},
		pulumi.Provider(p.Provider),
		pulumi.DependsOn([]pulumi.Resource{p.Services["registry"]}),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DependsOn returns the enabled API resources named, for pulumi.DependsOn.
func (p *Platform) DependsOn(names ...string) pulumi.ResourceOption {
	res := make([]pulumi.Resource, 0, len(names))
	for _, n := range names {
		res = append(res, p.Services[n])
	}
	return pulumi.DependsOn(res)
}

// ImageName is the registry path of an image tagged with tag.
func (p *Platform) ImageName(image, tag string) string {
	return fmt.Sprintf("%s-docker.pkg.dev/%s/%s/%s:%s", p.Region, p.ProjectID, RepositoryID, image, tag)
}

// SourceHash digests every regular file under root except the infra tree,
// so the image tag only changes when the service source does.
func SourceHash(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "infra", ".git", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		io.WriteString(h, path)
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16], nil
}
