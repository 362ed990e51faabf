package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
schema:
  - models.graphql
  - extra.graphql
strict: true
server:
  addr: ":9090"
  pretty: true
  timeout: 30s
  max_body_bytes: 1024
otel:
  endpoint: localhost:4317
  service: projgraph-dev
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, StringList{"models.graphql", "extra.graphql"}, cfg.Schema)
	require.True(t, cfg.Strict)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.True(t, cfg.Server.Pretty)
	require.Equal(t, Duration(30*time.Second), cfg.Server.Timeout)
	require.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	require.Equal(t, "localhost:4317", cfg.Otel.Endpoint)
	require.Equal(t, "projgraph-dev", cfg.Otel.Service)
}

func TestLoad_ScalarSchema(t *testing.T) {
	path := writeConfig(t, `schema: models.graphql`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, StringList{"models.graphql"}, cfg.Schema)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "server:\n  timeout: soon\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
