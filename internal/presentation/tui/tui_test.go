package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|____/")
}

func TestNewRenderer_PassThroughWhenNotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.md"))
	require.NoError(t, err)
	defer f.Close()

	render := NewRenderer(f)
	out, err := render("# Title\n\n**bold**")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\n**bold**", out)
}
