package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	c := &cli{}
	t.Cleanup(c.close)

	root := c.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args,
		"--base-url", baseURL,
		"--client-tag", "DASHBOARD_TEST",
		"--log-file", filepath.Join(t.TempDir(), "debug.log"),
	))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUploadCommand(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload/SP", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"status":"sucesso","mensagem":"Lista carregada","resposta_discador":{"id_lista":7}}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "lista_sp.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e\n"), 0644))

	out, err := runCLI(t, srv.URL, "upload", "--region", "sp", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Mailing SP uploaded successfully")
	assert.Contains(t, out, "Reference: 7")
	assert.Contains(t, out, "Lista carregada")

	assert.Equal(t, "YSxiLGMsZCxlCg==", payload["file_content_base64"])
	assert.Equal(t, "lista_sp.csv", payload["mailling_name"])
	assert.Equal(t, "DASHBOARD_TEST", payload["login_crm"])
}

func TestUploadCommandFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"dialer offline"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	csv := filepath.Join(dir, "lista.csv")
	require.NoError(t, os.WriteFile(csv, []byte("x\n"), 0644))
	xlsx := filepath.Join(dir, "lista.xlsx")
	require.NoError(t, os.WriteFile(xlsx, []byte("x\n"), 0644))

	_, err := runCLI(t, srv.URL, "upload", "--region", "RJ", csv)
	assert.Error(t, err)

	_, err = runCLI(t, srv.URL, "upload", "--region", "MG", xlsx)
	assert.ErrorContains(t, err, "invalid format")

	// The name alone decides; a missing file of the wrong type is never opened.
	_, err = runCLI(t, srv.URL, "upload", "--region", "MG", filepath.Join(dir, "missing.xlsx"))
	kind, ok := mailing.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, mailing.KindValidation, kind)
	assert.ErrorContains(t, err, "invalid format")

	_, err = runCLI(t, srv.URL, "upload", "--region", "MG", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
	assert.Equal(t, 0, calls)

	_, err = runCLI(t, srv.URL, "upload", "--region", "MG", csv)
	assert.ErrorContains(t, err, "dialer offline")
	_, ok = mailing.KindOf(err)
	assert.True(t, ok, "the upload error keeps its kind")
	assert.Equal(t, 1, calls)
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status/MG":
			_, _ = w.Write([]byte(`{"nome":"MAILING_DISCADOR_OUTUBRO","progresso":"35%","saidas":12}`))
		case "/api/status/SP":
			_, _ = w.Write([]byte(`{"nome":"","progresso":"","saidas":""}`))
		case "/api/custos/":
			_, _ = w.Write([]byte(`{"saldo_atual":"1500.00","custo_diario":12.5}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "OUTUBRO")
	assert.Contains(t, out, "35%")
	assert.Contains(t, out, "---")
	assert.Contains(t, out, "Balance 1500.00 | Today 12.5")
}
