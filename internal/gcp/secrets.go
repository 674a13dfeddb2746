package gcp

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretStore reads secret payloads from Secret Manager.
type SecretStore struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretStore creates a SecretStore. projectID is used to expand short secret names.
func NewSecretStore(ctx context.Context, projectID string) (*SecretStore, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &SecretStore{client: client, projectID: projectID}, nil
}

// Access returns the decrypted payload of the named secret.
func (s *SecretStore) Access(ctx context.Context, name string) (string, error) {
	resourceName, err := SecretVersionName(s.projectID, name)
	if err != nil {
		return "", err
	}
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resourceName})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", resourceName, err)
	}
	value := strings.TrimSpace(string(resp.GetPayload().GetData()))
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", resourceName)
	}
	return value, nil
}

// Close releases the underlying client.
func (s *SecretStore) Close() error {
	return s.client.Close()
}

// SecretVersionName expands a short secret name into a full version resource name.
// Names that already start with "projects/" are used as given, with
// "/versions/latest" appended when no version is present.
func SecretVersionName(projectID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("secret name must not be empty")
	}
	if strings.HasPrefix(name, "projects/") {
		if strings.Contains(name, "/versions/") {
			return name, nil
		}
		return name + "/versions/latest", nil
	}
	if projectID == "" {
		return "", fmt.Errorf("projectID must be provided to resolve secret %q", name)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name), nil
}
