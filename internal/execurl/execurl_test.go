package execurl

import (
	"strings"
	"testing"
)

func TestExecPath(t *testing.T) {
	coords := ContainerCoords{Namespace: "default", Pod: "web-0", Container: "app"}
	got := ExecPath(coords)
	want := "/api/v1/namespaces/default/pods/web-0/exec"
	if got != want {
		t.Errorf("ExecPath = %q, want %q", got, want)
	}
}

func TestHTTPSOrigin(t *testing.T) {
	got := HTTPSOrigin("10.0.0.1", "6443")
	want := "https://10.0.0.1:6443"
	if got != want {
		t.Errorf("HTTPSOrigin = %q, want %q", got, want)
	}
}

func TestNewExecParamsDefaults(t *testing.T) {
	coords := ContainerCoords{Namespace: "default", Pod: "web-0", Container: "app"}
	p := NewExecParams(coords)

	if p.Container != "app" {
		t.Errorf("Container = %q, want app", p.Container)
	}
	if !p.Stdin || !p.Stdout || !p.Stderr || !p.TTY || !p.Pretty || !p.Follow {
		t.Errorf("expected all exec flags true, got %+v", p)
	}
	if p.Command != DefaultCommand {
		t.Errorf("Command = %q, want DefaultCommand", p.Command)
	}
}

func TestWSSURLKeyOrder(t *testing.T) {
	coords := ContainerCoords{Namespace: "ns1", Pod: "pod1", Container: "c1"}
	params := NewExecParams(coords)

	got := WSSURL("10.0.0.1", "6443", coords, params)

	wantPrefix := "wss://10.0.0.1:6443/api/v1/namespaces/ns1/pods/pod1/exec?" +
		"container=c1&stdin=true&stdout=true&stderr=true&tty=true&command="
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("WSSURL = %q, want prefix %q", got, wantPrefix)
	}
	if !strings.HasSuffix(got, "&pretty=true&follow=true") {
		t.Errorf("WSSURL = %q, want suffix &pretty=true&follow=true", got)
	}
}

func TestWSSURLCommandPastedLiterally(t *testing.T) {
	coords := ContainerCoords{Namespace: "ns1", Pod: "pod1", Container: "c1"}
	params := NewExecParams(coords)

	got := WSSURL("10.0.0.1", "6443", coords, params)

	if !strings.Contains(got, "command="+DefaultCommand+"&pretty=true") {
		t.Errorf("expected literal command fragment embedded unescaped, got %q", got)
	}
}

func TestWSSURLCustomParams(t *testing.T) {
	coords := ContainerCoords{Namespace: "ns1", Pod: "pod1", Container: "c1"}
	params := ExecParams{
		Container: "c1",
		Stdin:     true,
		Stdout:    true,
		Stderr:    false,
		TTY:       false,
		Command:   "command=sh",
		Pretty:    false,
		Follow:    true,
	}

	got := WSSURL("host", "443", coords, params)
	want := "wss://host:443/api/v1/namespaces/ns1/pods/pod1/exec?" +
		"container=c1&stdin=true&stdout=true&stderr=false&tty=false&command=command=sh&pretty=false&follow=true"
	if got != want {
		t.Errorf("WSSURL = %q, want %q", got, want)
	}
}
