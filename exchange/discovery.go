package exchange

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Discover resolves the identity server's endpoints from its OIDC discovery
// document ({issuer}/.well-known/openid-configuration). Endpoints the
// document does not advertise fall back to the conventional layout under the
// issuer.
func Discover(ctx context.Context, issuer string) (Endpoints, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("exchange.Discover provider: %w", err)
	}

	var extra struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
		UserinfoEndpoint   string `json:"userinfo_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		return Endpoints{}, fmt.Errorf("exchange.Discover claims: %w", err)
	}

	endpoints := DefaultEndpoints(issuer)
	oauthEndpoint := provider.Endpoint()
	if oauthEndpoint.AuthURL != "" {
		endpoints.AuthURL = oauthEndpoint.AuthURL
	}
	if oauthEndpoint.TokenURL != "" {
		endpoints.TokenURL = oauthEndpoint.TokenURL
	}
	if extra.RevocationEndpoint != "" {
		endpoints.RevokeURL = extra.RevocationEndpoint
	}
	if extra.UserinfoEndpoint != "" {
		endpoints.UserinfoURL = extra.UserinfoEndpoint
	}
	return endpoints, nil
}
