// Package handlers holds the gin-gonic route handlers for the gateway's
// HTTP surface: the Handler Adapter (exec upgrade) and the two listing
// proxies spec.md §1 treats as external collaborators. The upgrader shape
// (CheckOrigin/buffer sizes) is kept from the teacher's own
// internal/api/handlers/exec.go; the body of the handler is rewritten
// entirely, since the teacher dials the cluster via client-go's SPDY
// remotecommand executor and this gateway dials a raw WebSocket instead —
// see internal/k8sws, grounded on other_examples' Facets-cloud-kube-dash
// terminal executor, and the Handler Adapter wiring shape (upgrade → dial
// → bridge → log summary) grounded on that repo's terminal handler.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kube-exec/bridge/internal/applog"
	"github.com/kube-exec/bridge/internal/execurl"
	"github.com/kube-exec/bridge/internal/identity"
	"github.com/kube-exec/bridge/internal/k8sws"
	"github.com/kube-exec/bridge/internal/session"
)

const dialTimeout = 30 * time.Second

var execUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // browser origin checking is out of scope; see spec.md §1
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	Subprotocols:    []string{"echo-protocol"},
}

var log = applog.New("Handler")

// ExecHandler is the Handler Adapter of spec.md §4.6: it upgrades the
// inbound browser request, dials the cluster exec endpoint, and supervises
// a Session Pump for the life of the connection.
type ExecHandler struct {
	identity *identity.Shared
	registry *session.Registry
	debug    bool
}

// NewExecHandler builds an ExecHandler sharing id (so token refreshes are
// picked up by every new session) and registering sessions in reg so the
// server can shut them all down together.
func NewExecHandler(id *identity.Shared, reg *session.Registry, debug bool) *ExecHandler {
	return &ExecHandler{identity: id, registry: reg, debug: debug}
}

// Exec handles GET /namespace/:namespace/pod/:pod/container/:container, the
// inbound HTTP contract from spec.md §6. Missing path params are rejected
// with 400 before the upgrade; a failed dial after upgrade closes with
// 1011, per spec.md §7 (DialError is the one user-visible error kind).
func (h *ExecHandler) Exec(c *gin.Context) {
	coords := execurl.ContainerCoords{
		Namespace: c.Param("namespace"),
		Pod:       c.Param("pod"),
		Container: c.Param("container"),
	}
	if coords.Namespace == "" || coords.Pod == "" || coords.Container == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "namespace, pod and container are required"})
		return
	}

	browserConn, err := execUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("browser upgrade failed: %v", err)
		return
	}

	id := h.identity.Get()
	params := execurl.NewExecParams(coords)

	dialCtx, cancel := context.WithTimeout(c.Request.Context(), dialTimeout)
	upstream, err := k8sws.Dial(dialCtx, id, coords, params)
	cancel()
	if err != nil {
		log.Error("dial upstream failed for %+v: %v", coords, err)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "upstream dial failed")
		_ = browserConn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(5*time.Second))
		_ = browserConn.Close()
		return
	}

	sess := session.New(session.NewID(), coords, browserConn, upstream.Conn, h.debug)
	h.registry.Add(sess)
	defer h.registry.Remove(sess.ID)

	stats := sess.Run(c.Request.Context())
	log.Info("session %s done: coords=%+v duration=%s exchanges=%d dropped=%d reason=%q",
		sess.ID, stats.Coords, stats.Duration(), stats.ExchangeSeq, stats.Dropped, stats.Reason)
}
