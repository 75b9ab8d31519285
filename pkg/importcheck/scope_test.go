package importcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
)

func TestScopeContext_StartsAtModule(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()

	assert.True(t, scope.ModuleOnly())
	assert.Equal(t, 1, scope.Depth())
	assert.Equal(t, importcheck.FrameModule, scope.Top().Kind)
}

func TestScopeContext_PushPop(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()
	scope.Push(importcheck.Frame{Kind: importcheck.FrameFunction, StartLine: 2, EndLine: 5})

	assert.False(t, scope.ModuleOnly())
	assert.Equal(t, 2, scope.Depth())
	assert.Equal(t, importcheck.FrameFunction, scope.Top().Kind)

	scope.Pop()

	assert.True(t, scope.ModuleOnly())
}

func TestScopeContext_PopNeverRemovesModuleFrame(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()
	scope.Pop()
	scope.Pop()

	assert.Equal(t, 1, scope.Depth())
	assert.Equal(t, importcheck.FrameModule, scope.Top().Kind)
}

func TestScopeContext_Contains(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()
	scope.Push(importcheck.Frame{Kind: importcheck.FrameClass})
	scope.Push(importcheck.Frame{Kind: importcheck.FrameFunction})

	assert.True(t, scope.Contains(importcheck.FrameModule))
	assert.True(t, scope.Contains(importcheck.FrameClass))
	assert.True(t, scope.Contains(importcheck.FrameFunction))
	assert.False(t, scope.Contains(importcheck.FrameExceptionHandler))
}

func TestScopeContext_InnermostNonModule(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()

	_, ok := scope.InnermostNonModule()
	assert.False(t, ok)

	scope.Push(importcheck.Frame{Kind: importcheck.FrameClass})
	scope.Push(importcheck.Frame{Kind: importcheck.FrameFunction})

	frame, ok := scope.InnermostNonModule()
	require.True(t, ok)
	assert.Equal(t, importcheck.FrameFunction, frame.Kind)
}

func TestScopeContext_InnermostHandler(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()

	_, ok := scope.InnermostHandler()
	assert.False(t, ok)

	handler := &importcheck.HandlerContext{Statements: 1}
	scope.Push(importcheck.Frame{Kind: importcheck.FrameExceptionHandler, Handler: handler})
	scope.Push(importcheck.Frame{Kind: importcheck.FrameConditionalBlock})

	frame, ok := scope.InnermostHandler()
	require.True(t, ok)
	assert.Same(t, handler, frame.Handler)
}

func TestScopeContext_SnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	scope := importcheck.NewScopeContext()
	scope.Push(importcheck.Frame{Kind: importcheck.FrameFunction})

	snapshot := scope.Snapshot()
	scope.Push(importcheck.Frame{Kind: importcheck.FrameConditionalBlock})
	scope.Pop()
	scope.Pop()

	assert.Equal(t, 2, snapshot.Depth())
	assert.Equal(t, importcheck.FrameFunction, snapshot.Top().Kind)
	assert.True(t, scope.ModuleOnly())
}

func TestFrameKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "module", importcheck.FrameModule.String())
	assert.Equal(t, "function", importcheck.FrameFunction.String())
	assert.Equal(t, "class", importcheck.FrameClass.String())
	assert.Equal(t, "conditional", importcheck.FrameConditionalBlock.String())
	assert.Equal(t, "exception handler", importcheck.FrameExceptionHandler.String())
	assert.Equal(t, "type-checking block", importcheck.FrameTypeCheckingBlock.String())
}
