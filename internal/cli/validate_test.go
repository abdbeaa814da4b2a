package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func executeValidate(t *testing.T, format, path string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidConfig(t *testing.T) {
	path := writeConfig(t, "keys: disable: \"x\"\nui_scale: 2\n")

	out, err := executeValidate(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path)
	assert.Contains(t, out, "disable=x")
	assert.Contains(t, out, "select-tree=ctrl+t")
	assert.Contains(t, out, "ui scale: 2")
	assert.Contains(t, out, "container: 60x20 at (0,1)")
}

func TestValidateValidConfigJSON(t *testing.T) {
	path := writeConfig(t, "seed: 42\n")

	out, err := executeValidate(t, "json", path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "delete", resp.Data.Keys.Delete)
	assert.Equal(t, [4]int{0, 1, 60, 20}, resp.Data.Container)
	require.NotNil(t, resp.Data.Seed)
	assert.Equal(t, uint64(42), *resp.Data.Seed)
}

func TestValidateInvalidConfig(t *testing.T) {
	path := writeConfig(t, "ui_scale: 0\n")

	out, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "CONFIG_INVALID")
}

func TestValidateInvalidConfigJSON(t *testing.T) {
	path := writeConfig(t, "keys: select_tree: \"\"\n")

	out, err := executeValidate(t, "json", path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "CONFIG_INVALID", resp.Data.Errors[0].Code)
}

func TestValidateSyntaxError(t *testing.T) {
	path := writeConfig(t, "keys: {\n")

	out, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "CONFIG_SYNTAX")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := executeValidate(t, "text", filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateMissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
