// Package api wires the gateway's gin-gonic route table. Trimmed from the
// teacher's internal/api/router.go, which registered ~20 unrelated route
// groups (workloads, RBAC, Helm, tunnels, YAML editing, ...); this gateway
// keeps only the exec upgrade spec.md §6 requires, plus the two listing
// proxies and a health check.
package api

import (
	"github.com/gin-gonic/gin"
	"k8s.io/client-go/kubernetes"

	"github.com/kube-exec/bridge/internal/api/handlers"
	"github.com/kube-exec/bridge/internal/api/middleware"
	"github.com/kube-exec/bridge/internal/identity"
	"github.com/kube-exec/bridge/internal/session"
)

// SetupRoutes registers every route the gateway serves.
func SetupRoutes(router *gin.Engine, id *identity.Shared, reg *session.Registry, clientset kubernetes.Interface, debug bool) {
	execHandler := handlers.NewExecHandler(id, reg, debug)
	namespaceHandler := handlers.NewNamespaceHandler(clientset)
	containerHandler := handlers.NewContainerHandler(clientset)

	router.GET("/namespace/:namespace/pod/:pod/container/:container", execHandler.Exec)

	listing := router.Group("/")
	listing.Use(middleware.ETag())
	{
		listing.GET("/namespaces", namespaceHandler.ListNamespaces)
		listing.GET("/namespaces/:namespace/containers", containerHandler.ListContainers)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "sessions": reg.Count()})
	})
}
