package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRun_NoCommand(t *testing.T) {
	require.Error(t, run(nil))
}

func TestRun_UnknownCommand(t *testing.T) {
	require.Error(t, run([]string{"frobnicate"}))
}

func TestRun_Help(t *testing.T) {
	require.NoError(t, run([]string{"help"}))
	require.NoError(t, run([]string{"help", "project"}))
	require.NoError(t, run([]string{"help", "serve"}))
	require.Error(t, run([]string{"help", "frobnicate"}))
}

func TestCmdProject(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphql")
	queryPath := filepath.Join(dir, "query.graphql")

	writeFile(t, schemaPath, `
		type Query { user: User }
		type User { id: ID! email: String posts: [Post!] }
		type Post { id: ID! title: String }
	`)
	writeFile(t, queryPath, `
		query ($n: Int) {
			user {
				id
				email
				fullName
				posts(take: $n) { title }
			}
		}
	`)

	out := captureStdout(t, func() {
		require.NoError(t, cmdProject([]string{
			"-schema", schemaPath,
			"-query", queryPath,
			"-variables", `{"n": 5}`,
		}))
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	want := map[string]any{
		"user": map[string]any{
			"select": map[string]any{
				"id":    true,
				"email": true,
				"posts": map[string]any{
					"select": map[string]any{"title": true},
					"take":   float64(5),
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestCmdProject_MissingOperation(t *testing.T) {
	dir := t.TempDir()
	queryPath := filepath.Join(dir, "query.graphql")
	writeFile(t, queryPath, `query A { user { id } } query B { user { email } }`)

	err := cmdProject([]string{"-query", queryPath})
	require.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}
