// Package secrets resolves platform secrets from Google Secret Manager when
// they are not supplied through the environment.
package secrets

import (
	"context"
	"fmt"

	"eschool/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Resolver accesses secret values by name within the configured project.
type Resolver struct {
	client    *secretmanager.Client
	projectID string
}

// NewResolver creates a Secret Manager backed resolver.
func NewResolver(ctx context.Context, cfg *config.Config) (*Resolver, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}
	var opts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &Resolver{client: client, projectID: cfg.GCPProjectID}, nil
}

// Resolve returns the latest version of the named secret.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", r.projectID, name)
	result, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

// Close releases the underlying client.
func (r *Resolver) Close() error {
	return r.client.Close()
}
