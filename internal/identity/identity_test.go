package identity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kube-exec/bridge/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoad_LocalOverridePaths(t *testing.T) {
	dir := t.TempDir()
	caPath := writeFile(t, dir, "ca.crt", testCAPEM)
	nsPath := writeFile(t, dir, "namespace", "demo-ns\n")
	tokPath := writeFile(t, dir, "token", "tok-123\n")

	cfg := config.Config{
		AppEnv:        "local",
		APIHost:       "127.0.0.1",
		APIPort:       "6443",
		CACertPath:    caPath,
		NamespacePath: nsPath,
		TokenPath:     tokPath,
	}

	id := Load(cfg)

	if id.PodNamespace != "demo-ns" {
		t.Errorf("PodNamespace = %q, want demo-ns", id.PodNamespace)
	}
	if id.BearerToken != "tok-123" {
		t.Errorf("BearerToken = %q, want tok-123", id.BearerToken)
	}
	if len(id.CABundle) == 0 {
		t.Error("CABundle is empty, want PEM bytes")
	}
}

func TestLoad_MissingFilesYieldEmptyFields(t *testing.T) {
	cfg := config.Config{
		AppEnv:        "local",
		CACertPath:    "/no/such/ca.crt",
		NamespacePath: "/no/such/namespace",
		TokenPath:     "/no/such/token",
	}

	id := Load(cfg)

	if id.PodNamespace != "" || id.BearerToken != "" || id.CABundle != nil {
		t.Errorf("expected all-empty Identity for missing files, got %+v", id)
	}
}

func TestTLSConfig_EmptyBundleYieldsNoRoots(t *testing.T) {
	id := Identity{}
	tlsCfg, err := id.TLSConfig()
	if err != nil {
		t.Fatalf("TLSConfig: %v", err)
	}
	if tlsCfg.RootCAs != nil {
		t.Error("expected nil RootCAs for empty CA bundle")
	}
}

func TestTLSConfig_ParsesValidPEM(t *testing.T) {
	id := Identity{CABundle: []byte(testCAPEM)}
	tlsCfg, err := id.TLSConfig()
	if err != nil {
		t.Fatalf("TLSConfig: %v", err)
	}
	if tlsCfg.RootCAs == nil {
		t.Error("expected non-nil RootCAs for valid PEM bundle")
	}
}

func TestTLSConfig_RejectsGarbage(t *testing.T) {
	id := Identity{CABundle: []byte("not a cert")}
	if _, err := id.TLSConfig(); err == nil {
		t.Error("expected error for malformed CA bundle")
	}
}

func TestSharedSetToken(t *testing.T) {
	shared := NewShared(Identity{BearerToken: "old"})
	shared.SetToken("new")
	if got := shared.Get().BearerToken; got != "new" {
		t.Errorf("BearerToken = %q, want new", got)
	}
}

func TestRefresherPicksUpRotatedToken(t *testing.T) {
	dir := t.TempDir()
	tokPath := writeFile(t, dir, "token", "first\n")

	shared := NewShared(Identity{BearerToken: "first"})
	r := NewRefresher(shared, tokPath, 5*time.Millisecond)
	r.Start()
	defer r.Stop()

	writeFile(t, dir, "token", "second\n")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if shared.Get().BearerToken == "second" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("BearerToken never refreshed, still %q", shared.Get().BearerToken)
}

// testCAPEM is a syntactically valid self-signed certificate used only to
// exercise the PEM-parsing path; it is not a real cluster CA.
const testCAPEM = `-----BEGIN CERTIFICATE-----
MIIBeTCCAR+gAwIBAgIUb3Y1JPZIK/jq4O91M0Sn6XOvnggwCgYIKoZIzj0EAwIw
EjEQMA4GA1UEAwwHdGVzdC1jYTAeFw0yNjA3MzAxMTMyMzBaFw0zNjA3MjcxMTMy
MzBaMBIxEDAOBgNVBAMMB3Rlc3QtY2EwWTATBgcqhkjOPQIBBggqhkjOPQMBBwNC
AAREBWR7XTtMnBbuV4qRptg6avtKQErcyxIwOuDY0I2sRj30wvahwQmpT1/yOXoP
DG0cV2Yw84wA5Ya3dOofyIzGo1MwUTAdBgNVHQ4EFgQU3dYsQIQFzSNi1OE/DELm
C5cAE50wHwYDVR0jBBgwFoAU3dYsQIQFzSNi1OE/DELmC5cAE50wDwYDVR0TAQH/
BAUwAwEB/zAKBggqhkjOPQQDAgNIADBFAiEA0o4rHiqjw6bMJkM9MllD+05pTSBV
q2mBploEB9Bn4J4CIH8ShPQokjyrrtQJb+AohW6X1Y95Xl349xNP+mxX2rlp
-----END CERTIFICATE-----`
