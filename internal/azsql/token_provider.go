package azsql

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AzureSQLScope is the OAuth scope for Azure SQL Database. This is the
// resource identifier Entra ID uses to issue tokens for SQL access.
const AzureSQLScope = "https://database.windows.net/.default"

// TokenProvider abstracts access-token acquisition for passwordless
// authentication. The interface exists so tests can inject failures and
// count acquisitions.
type TokenProvider interface {
	// GetToken acquires a bearer token scoped to the target database
	// resource. Returns the token and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Must not include secrets.
	String() string
}

// DefaultCredentialProvider uses Azure's DefaultAzureCredential chain:
// environment variables, workload identity, managed identity, then the
// Azure CLI. This is the ambient-identity path.
type DefaultCredentialProvider struct {
	credential azcore.TokenCredential
}

// NewDefaultCredentialProvider creates a provider using the default
// credential chain.
func NewDefaultCredentialProvider() (*DefaultCredentialProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &DefaultCredentialProvider{credential: cred}, nil
}

func (p *DefaultCredentialProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzureSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *DefaultCredentialProvider) String() string {
	return "AzureDefaultCredential"
}
