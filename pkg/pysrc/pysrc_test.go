package pysrc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookfang/pkg/pysrc"
)

func parseSource(t *testing.T, source string) *pysrc.Tree {
	t.Helper()

	tree, err := pysrc.NewParser().Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	return tree
}

func TestParse_CleanSource(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, "import os\n")

	root := tree.Root()
	assert.Equal(t, pysrc.NodeModule, root.Type())

	_, hasErr := tree.FirstError()
	assert.False(t, hasErr)
}

func TestParse_EmptySource(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, "")

	root := tree.Root()
	assert.Equal(t, pysrc.NodeModule, root.Type())
	assert.Equal(t, uint32(0), root.NamedChildCount())
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, "def f(:\n    pass\n")

	perr, hasErr := tree.FirstError()
	require.True(t, hasErr)
	assert.Equal(t, "syntax error", perr.Message)
	assert.GreaterOrEqual(t, perr.Line, 1)
	assert.GreaterOrEqual(t, perr.Column, 1)
}

func TestTree_Text(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, "import os\n")

	root := tree.Root()
	require.Equal(t, uint32(1), root.NamedChildCount())

	stmt := root.NamedChild(0)
	assert.Equal(t, pysrc.NodeImport, stmt.Type())
	assert.Equal(t, "import os", tree.Text(stmt))
}

func TestPositions_OneBased(t *testing.T) {
	t.Parallel()

	tree := parseSource(t, "import os\nimport sys\n")

	root := tree.Root()
	require.Equal(t, uint32(2), root.NamedChildCount())

	first := root.NamedChild(0)
	assert.Equal(t, 1, pysrc.Line(first))
	assert.Equal(t, 1, pysrc.Column(first))

	second := root.NamedChild(1)
	assert.Equal(t, 2, pysrc.Line(second))
	assert.Equal(t, 1, pysrc.Column(second))
}

func TestParser_Reuse(t *testing.T) {
	t.Parallel()

	parser := pysrc.NewParser()

	for range 3 {
		tree, err := parser.Parse(context.Background(), []byte("x = 1\n"))
		require.NoError(t, err)

		assert.Equal(t, pysrc.NodeModule, tree.Root().Type())
		tree.Close()
	}
}

func TestTree_Close_Idempotent(t *testing.T) {
	t.Parallel()

	tree, err := pysrc.NewParser().Parse(context.Background(), []byte("import os\n"))
	require.NoError(t, err)

	tree.Close()
	tree.Close()
}
