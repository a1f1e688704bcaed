package config

type Cors struct{}

var _ CorsConfig = Cors{}

// The proxy's browser-facing endpoints are deliberately permissive: result
// delivery is authenticated by the state token, not by origin.

func (Cors) GetAllowedMethods() string {
	return "GET, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
