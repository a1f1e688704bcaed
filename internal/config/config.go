package config

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	ProxyConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Proxy
}

func New() Config {
	return mainConfig{}
}
