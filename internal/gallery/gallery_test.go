package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrams/internal/diagram"
)

func TestSamplesCoverEveryTool(t *testing.T) {
	seen := map[diagram.Tool]bool{}
	names := map[string]bool{}
	for _, s := range Samples() {
		seen[s.Spec.Tool] = true
		assert.False(t, names[s.Name], "duplicate sample %s", s.Name)
		names[s.Name] = true
		assert.Regexp(t, `^sample_`, s.ID)
	}
	for _, tool := range diagram.AllTools {
		assert.True(t, seen[tool], "no sample for %s", tool)
	}
}

func TestFind(t *testing.T) {
	s, ok := Find("ratio-bar")
	require.True(t, ok)
	assert.Equal(t, diagram.ToolBarModel, s.Spec.Tool)

	byID, ok := Find(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.Name, byID.Name)

	_, ok = Find("nope")
	assert.False(t, ok)
}

func TestSamplesAreStableCopies(t *testing.T) {
	a := Samples()
	a[0].Name = "changed"
	b := Samples()
	assert.NotEqual(t, "changed", b[0].Name)
	assert.Equal(t, a[1].ID, b[1].ID)
}
