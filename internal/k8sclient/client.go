// Package k8sclient builds a client-go Clientset from the gateway's own
// Identity, for the namespace/container listing proxies that spec.md §1
// calls out as external collaborators. Adapted from the teacher's
// internal/k8s.NewClient, which picked between in-cluster config and a
// kubeconfig file; this gateway already loads service-account credentials
// itself (internal/identity), so the clientset is built directly from
// those instead of asking client-go to rediscover them.
package k8sclient

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/kube-exec/bridge/internal/identity"
)

// New builds a Clientset authenticated the same way the exec dialer is:
// bearer token plus the cluster CA bundle from id.
func New(id identity.Identity) (*kubernetes.Clientset, error) {
	cfg := &rest.Config{
		Host:        fmt.Sprintf("https://%s:%s", id.APIHost, id.APIPort),
		BearerToken: id.BearerToken,
		TLSClientConfig: rest.TLSClientConfig{
			CAData: id.CABundle,
		},
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build kubernetes clientset: %w", err)
	}
	return clientset, nil
}
