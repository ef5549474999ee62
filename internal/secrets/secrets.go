// Package secrets supplies the credential bundle needed to call the
// ticketing system API, with a short process-wide cache in front of the
// backing store.
package secrets

import (
	"context"

	"bendigotelco/connecthub/pkg/apperr"
)

// Bundle is the credential set for the external API. Field names follow the
// JSON blob stored in the secret backend.
type Bundle struct {
	APIBaseURL   string `json:"apiBaseUrl"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TenantID     string `json:"tenantId"`
}

// Validate checks the required fields are present.
func (b *Bundle) Validate() error {
	switch {
	case b.APIBaseURL == "":
		return apperr.New(apperr.KindConfig, "secret bundle missing apiBaseUrl")
	case b.ClientID == "":
		return apperr.New(apperr.KindConfig, "secret bundle missing clientId")
	case b.ClientSecret == "":
		return apperr.New(apperr.KindConfig, "secret bundle missing clientSecret")
	case b.TenantID == "":
		return apperr.New(apperr.KindConfig, "secret bundle missing tenantId")
	}
	return nil
}

// Provider fetches the credential bundle from a backing store.
// Implementations: file blob (production stand-in) or static config values.
type Provider interface {
	Fetch(ctx context.Context) (*Bundle, error)
}
