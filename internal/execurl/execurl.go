// Package execurl assembles the HTTPS and WebSocket URLs for the cluster
// API server's pod exec subresource, per spec.md §4.2. It is pure string
// building — no I/O, no dependency on Identity or the dialer.
package execurl

import "fmt"

// ContainerCoords identifies the pod and container a session targets. All
// three fields are expected to be non-empty Kubernetes names; the Handler
// Adapter is responsible for rejecting a request before this package sees
// empty values.
type ContainerCoords struct {
	Namespace string
	Pod       string
	Container string
}

// ExecParams is the derived per-session query parameter set for the exec
// subresource, per spec.md §3. Command defaults to an expression that sets
// TERM=xterm, a fixed geometry, and execs bash; the value is pasted into the
// query string verbatim (not further percent-encoded) because the Kubernetes
// exec API parses repeated "command" and "env" keys out of it — see the open
// question in spec.md §9 and DESIGN.md for why this stays literal.
type ExecParams struct {
	Container string
	Stdin     bool
	Stdout    bool
	Stderr    bool
	TTY       bool
	Command   string
	Pretty    bool
	Follow    bool
}

// DefaultCommand is the literal command-query fragment used unless a caller
// overrides it. It encodes, in the cluster API server's own query grammar,
// "set TERM=xterm, COLUMNS=80, LINES=24, then exec bash".
const DefaultCommand = "env&env=TERM%3Dxterm&command=COLUMNS%3D80&command=LINES%3D24&command=bash"

// NewExecParams builds the default ExecParams for coords, matching
// spec.md §3's derived-value description.
func NewExecParams(coords ContainerCoords) ExecParams {
	return ExecParams{
		Container: coords.Container,
		Stdin:     true,
		Stdout:    true,
		Stderr:    true,
		TTY:       true,
		Command:   DefaultCommand,
		Pretty:    true,
		Follow:    true,
	}
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// query renders p in the fixed key order spec.md §4.2 mandates:
// container, stdin, stdout, stderr, tty, command, pretty, follow. Command is
// pasted in unescaped, on purpose — see ExecParams's doc comment.
func (p ExecParams) query() string {
	return fmt.Sprintf(
		"container=%s&stdin=%s&stdout=%s&stderr=%s&tty=%s&command=%s&pretty=%s&follow=%s",
		p.Container, boolStr(p.Stdin), boolStr(p.Stdout), boolStr(p.Stderr),
		boolStr(p.TTY), p.Command, boolStr(p.Pretty), boolStr(p.Follow),
	)
}

// ExecPath returns the exec subresource path for coords, e.g.
// "/api/v1/namespaces/default/pods/web-0/exec".
func ExecPath(coords ContainerCoords) string {
	return fmt.Sprintf("/api/v1/namespaces/%s/pods/%s/exec", coords.Namespace, coords.Pod)
}

// HTTPSOrigin builds "https://host:port", used as the Origin header value
// during the upgrade handshake.
func HTTPSOrigin(host, port string) string {
	return fmt.Sprintf("https://%s:%s", host, port)
}

// WSSURL builds the full "wss://host:port{path}?{query}" exec target.
func WSSURL(host, port string, coords ContainerCoords, params ExecParams) string {
	return fmt.Sprintf("wss://%s:%s%s?%s", host, port, ExecPath(coords), params.query())
}
