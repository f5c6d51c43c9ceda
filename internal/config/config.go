// Package config resolves the environment-variable and file-path surface
// the gateway reads at startup: the in-cluster service-account defaults,
// the APP_ENV=local override paths, and the ambient HTTP port.
package config

import "os"

const (
	inClusterCACertPath   = "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"
	inClusterNamespacePath = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	inClusterTokenPath    = "/var/run/secrets/kubernetes.io/serviceaccount/token"
)

// Config is the process-wide set of knobs read once at startup.
type Config struct {
	AppEnv string

	APIHost string
	APIPort string

	CACertPath    string
	NamespacePath string
	TokenPath     string

	// HTTPPort is the port the host framework listens on; not part of
	// spec.md's scope but read by the teacher's main.go the same way.
	HTTPPort string
}

// IsLocal reports whether APP_ENV selects the local override paths.
func (c Config) IsLocal() bool {
	return c.AppEnv == "local"
}

// Load resolves Config from the environment, applying the precedence rule
// from spec.md §4.1: APP_ENV=local uses the three override env vars, any
// other value (including unset) uses the in-cluster well-known paths.
func Load() Config {
	cfg := Config{
		AppEnv:  os.Getenv("APP_ENV"),
		APIHost: os.Getenv("KUBERNETES_SERVICE_HOST"),
		APIPort: os.Getenv("KUBERNETES_SERVICE_PORT"),
		HTTPPort: os.Getenv("PORT"),
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	if cfg.AppEnv == "local" {
		cfg.CACertPath = os.Getenv("CA_CERT_PATH")
		cfg.NamespacePath = os.Getenv("NAMESPACE_PATH")
		cfg.TokenPath = os.Getenv("TOKEN_PATH")
		return cfg
	}

	cfg.CACertPath = inClusterCACertPath
	cfg.NamespacePath = inClusterNamespacePath
	cfg.TokenPath = inClusterTokenPath
	return cfg
}
