package client

import (
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Plain(t *testing.T) {
	c, err := NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Nil(t, c.Transport)
}

func TestNewHTTPClient_TrustsCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))

	c, err := NewHTTPClient(caFile, time.Second)
	require.NoError(t, err)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewHTTPClient_Errors(t *testing.T) {
	_, err := NewHTTPClient(filepath.Join(t.TempDir(), "missing.pem"), time.Second)
	assert.ErrorContains(t, err, "failed to read CA cert")

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))
	_, err = NewHTTPClient(bad, time.Second)
	assert.ErrorContains(t, err, "failed to parse CA cert")
}
