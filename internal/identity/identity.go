// Package identity loads the pod's service-account credentials and builds
// the TLS client configuration used to trust the cluster's API server CA,
// per spec.md §3/§4.1.
package identity

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"sync"

	certutil "k8s.io/client-go/util/cert"

	"github.com/kube-exec/bridge/internal/applog"
	"github.com/kube-exec/bridge/internal/config"
)

var log = applog.New("Identity")

// Identity is the immutable, process-wide credential set used to dial the
// cluster API server's exec subresource. A missing file yields an empty
// field rather than a load error — spec.md §3 requires dial-time failure,
// not bootstrap failure, when credentials are absent.
type Identity struct {
	APIHost      string
	APIPort      string
	CABundle     []byte
	BearerToken  string
	PodNamespace string
}

// Load reads the three service-account files and the two cluster env vars
// described in spec.md §4.1, resolving file paths through cfg's precedence.
func Load(cfg config.Config) Identity {
	id := Identity{
		APIHost: cfg.APIHost,
		APIPort: cfg.APIPort,
	}

	if ca, err := os.ReadFile(cfg.CACertPath); err != nil {
		log.Info("could not read CA bundle at %s: %v", cfg.CACertPath, err)
	} else {
		id.CABundle = ca
	}

	if ns, err := os.ReadFile(cfg.NamespacePath); err != nil {
		log.Info("could not read namespace file at %s: %v", cfg.NamespacePath, err)
	} else {
		id.PodNamespace = strings.TrimSpace(string(ns))
	}

	if tok, err := os.ReadFile(cfg.TokenPath); err != nil {
		log.Info("could not read token file at %s: %v", cfg.TokenPath, err)
	} else {
		id.BearerToken = strings.TrimSpace(string(tok))
	}

	return id
}

// TLSConfig builds a *tls.Config trusting exactly the service-account CA
// bundle. Callers that dial with an empty CABundle get a TLS config with
// nil RootCAs, so crypto/tls falls back to the host's system root pool; a
// server certificate issued by the cluster's own CA then fails verification
// and surfaces as a DialError at connect time, as spec.md §7 requires.
func (id Identity) TLSConfig() (*tls.Config, error) {
	tlsCfg := &tls.Config{}

	if len(id.CABundle) == 0 {
		return tlsCfg, nil
	}

	pool, err := certutil.NewPoolFromBytes(id.CABundle)
	if err != nil {
		return nil, fmt.Errorf("parse CA bundle: %w", err)
	}
	tlsCfg.RootCAs = pool
	return tlsCfg, nil
}

// Shared wraps an Identity so it can be safely aliased across sessions
// while still letting a background Refresher swap the bearer token.
type Shared struct {
	mu    sync.RWMutex
	value Identity
}

// NewShared wraps id for concurrent read access.
func NewShared(id Identity) *Shared {
	return &Shared{value: id}
}

// Get returns a copy of the current Identity.
func (s *Shared) Get() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// SetToken atomically swaps the bearer token, leaving every other field
// untouched.
func (s *Shared) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value.BearerToken = token
}
