package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NamespaceHandler serves the namespace-listing proxy spec.md §1 names as
// an out-of-core external collaborator. Adapted from the teacher's
// NamespaceHandler.ListNamespaces (same clientset call, trimmed of the
// resource-quota reporting that is out of this gateway's scope) and from
// original_source's services.rs::get_ns_list, which lists every namespace
// unpaginated in one call.
type NamespaceHandler struct {
	clientset kubernetes.Interface
}

// NewNamespaceHandler builds a NamespaceHandler over clientset.
func NewNamespaceHandler(clientset kubernetes.Interface) *NamespaceHandler {
	return &NamespaceHandler{clientset: clientset}
}

// NamespaceListResponse is the JSON body returned by ListNamespaces.
type NamespaceListResponse struct {
	Namespaces []string `json:"namespaces"`
	Count      int      `json:"count"`
}

// ListNamespaces handles GET /namespaces.
func (h *NamespaceHandler) ListNamespaces(c *gin.Context) {
	list, err := h.clientset.CoreV1().Namespaces().List(context.Background(), metav1.ListOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "KUBERNETES_ERROR", Message: err.Error()})
		return
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}

	c.JSON(http.StatusOK, NamespaceListResponse{Namespaces: names, Count: len(names)})
}
