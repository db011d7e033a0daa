package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "goinject")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "graph")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, _, err := execute(t, "nonexistent-command")
	assert.Error(t, err)
}

func TestGraphCmd(t *testing.T) {
	t.Setenv("APP_NAME", "Graph")
	t.Setenv("LOG_LEVEL", "info")

	out, _, err := execute(t, "graph", "--no-color", "--env-file", "testdata/missing.env")
	require.NoError(t, err)

	assert.Contains(t, out, "Bindings")
	assert.Contains(t, out, "*app.Engine")
	assert.Contains(t, out, `@Named("v8") app.Cylinder`)
	assert.Contains(t, out, "@Pooled")
	assert.Contains(t, out, "[OK] 8 binding(s)")
}

func TestGraphCmd_RejectsArguments(t *testing.T) {
	_, _, err := execute(t, "graph", "extra")
	assert.Error(t, err)
}

func TestServeCmd_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, _, err := execute(t, "serve", "--env-file", "testdata/missing.env")
	assert.ErrorContains(t, err, "logging")
}
