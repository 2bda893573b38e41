package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSpec(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeSpec(t, dir, "good.json", `{"toolName":"fractionBar","parameters":{"fraction1":"2/3"}}`)
	bad := writeSpec(t, dir, "bad.json", `{"toolName":"fractionBar","parameters":{"fraction1":"2/0"}}`)

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.json")

	out, err = run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "bad.json: ")
	assert.Contains(t, out, "(fraction1)")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	spec := writeSpec(t, dir, "line.json", `{"toolName":"numberLine","parameters":{"min":0,"max":4}}`)
	out := filepath.Join(dir, "line.pdf")

	_, err := run(t, "render", spec, "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	broken := writeSpec(t, dir, "broken.json", `{"toolName":"numberLine","parameters":{"min":4,"max":0}}`)
	_, err = run(t, "render", broken, "-o", filepath.Join(dir, "broken.svg"))
	assert.Error(t, err)

	svgOut := filepath.Join(dir, "broken-placeholder.svg")
	_, err = run(t, "render", broken, "-o", svgOut, "--placeholder")
	require.NoError(t, err)
	data, err = os.ReadFile(svgOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), "InvalidRange")
	renderKeepGoing = false
	renderOut = ""
}

func TestGalleryCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "gallery", "-d", dir, "ratio-bar", "like-terms")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "ratio-bar.svg"))
	assert.FileExists(t, filepath.Join(dir, "like-terms.svg"))
	assert.Contains(t, out, "ratio-bar.svg")

	_, err = run(t, "gallery", "-d", dir, "missing")
	assert.Error(t, err)

	out, err = run(t, "gallery", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "compare-fractions")
	galleryList = false
}
