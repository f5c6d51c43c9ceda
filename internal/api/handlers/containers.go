package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const defaultContainerPageSize = 50

// ContainerHandler serves the paginated container-listing proxy spec.md §1
// names as an out-of-core external collaborator. Grounded on
// original_source's services.rs::get_container_list: page through a
// namespace's pods with ListOptions.Limit/Continue and flatten each pod's
// containers into one row per (namespace, pod, container).
type ContainerHandler struct {
	clientset kubernetes.Interface
}

// NewContainerHandler builds a ContainerHandler over clientset.
func NewContainerHandler(clientset kubernetes.Interface) *ContainerHandler {
	return &ContainerHandler{clientset: clientset}
}

// ContainerInfo describes one container found in a listed pod.
type ContainerInfo struct {
	Namespace string `json:"namespace"`
	Pod       string `json:"pod"`
	Container string `json:"container"`
	Image     string `json:"image"`
	PodPhase  string `json:"podPhase"`
}

// ContainerListResponse is the JSON body returned by ListContainers,
// carrying a continue token when more pods remain.
type ContainerListResponse struct {
	Containers []ContainerInfo `json:"containers"`
	PageToken  string          `json:"pageToken,omitempty"`
}

// ListContainers handles GET /namespaces/:namespace/containers, with
// optional ?pageSize= and ?pageToken= query params.
func (h *ContainerHandler) ListContainers(c *gin.Context) {
	namespace := c.Param("namespace")
	if namespace == "" {
		namespace = "default"
	}

	pageSize := int64(defaultContainerPageSize)
	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			pageSize = n
		}
	}

	opts := metav1.ListOptions{Limit: pageSize}
	if token := c.Query("pageToken"); token != "" {
		opts.Continue = token
	}

	pods, err := h.clientset.CoreV1().Pods(namespace).List(context.Background(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "KUBERNETES_ERROR", Message: err.Error()})
		return
	}

	var containers []ContainerInfo
	for _, pod := range pods.Items {
		for _, container := range pod.Spec.Containers {
			containers = append(containers, ContainerInfo{
				Namespace: pod.Namespace,
				Pod:       pod.Name,
				Container: container.Name,
				Image:     container.Image,
				PodPhase:  string(pod.Status.Phase),
			})
		}
	}

	c.JSON(http.StatusOK, ContainerListResponse{
		Containers: containers,
		PageToken:  pods.Continue,
	})
}
