package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIssueServer_SANs(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatalf("NewAuthority: %v", err)
	}

	certPEM, keyPEM, err := ca.IssueServer([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueServer: %v", err)
	}
	if !strings.Contains(string(keyPEM), "EC PRIVATE KEY") {
		t.Errorf("unexpected key PEM: %s", keyPEM)
	}

	block, _ := pem.Decode(certPEM)
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || cert.IPAddresses[0].String() != "127.0.0.1" {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}

	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool, DNSName: "localhost"}); err != nil {
		t.Errorf("verify against CA: %v", err)
	}
}

func TestIssueServer_NoHosts(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ca.IssueServer(nil, time.Hour); err == nil {
		t.Error("expected error for empty hosts")
	}
}

func TestWriteBundle_ServesTLS(t *testing.T) {
	dir := t.TempDir()
	if err := WriteBundle(dir, []string{"127.0.0.1"}); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	caBefore, _ := os.ReadFile(filepath.Join(dir, CACertFile))

	// A second run keeps the CA.
	if err := WriteBundle(dir, []string{"127.0.0.1"}); err != nil {
		t.Fatalf("WriteBundle again: %v", err)
	}
	caAfter, _ := os.ReadFile(filepath.Join(dir, CACertFile))
	if string(caBefore) != string(caAfter) {
		t.Error("CA was regenerated")
	}

	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("server key mode = %v", info.Mode().Perm())
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatalf("load key pair: %v", err)
	}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{pair}}
	srv.StartTLS()
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caAfter)
	c := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}}}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("TLS request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLoadAuthority_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadAuthority(filepath.Join(dir, "x.crt"), filepath.Join(dir, "x.key")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.pem")
	_ = os.WriteFile(bad, []byte("garbage"), 0o600)
	if _, err := LoadAuthority(bad, bad); err == nil || !strings.Contains(err.Error(), "invalid CA cert PEM") {
		t.Errorf("expected invalid PEM error, got %v", err)
	}
}
