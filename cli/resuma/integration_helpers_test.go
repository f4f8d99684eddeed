//go:build integration

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a config that keeps all state inside root and
// returns its path together with the data directory.
func writeTestConfig(t *testing.T, root string) (string, string) {
	t.Helper()
	dataDir := filepath.Join(root, "data")
	cfgPath := filepath.Join(root, "config.yaml")

	yamlContent := `settings:
  data_dir: ` + dataDir + `
  catalog_file: ` + filepath.Join(root, "catalog.yaml") + `
  http_timeout: 5s
  inactivity_timeout: 5s
  max_concurrent: 2
  log_format: text
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))
	return cfgPath, dataDir
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// createSampleSource creates a directory tree to pack.
func createSampleSource(t *testing.T, root string) string {
	t.Helper()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bin", "llama-cli"), []byte("#!/bin/sh\necho hi\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.txt"), []byte("runtime"), 0o644))
	return src
}

// packAndServe packs a sample source via the CLI and serves the archive.
// It returns the archive URL.
func packAndServe(t *testing.T, root string) string {
	t.Helper()
	src := createSampleSource(t, root)
	archivePath := filepath.Join(root, "runtime.zip")
	_, err := runCLI(t, "--no-color", "pack", src, archivePath)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archivePath)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/runtime.zip"
}
