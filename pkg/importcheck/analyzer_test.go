package importcheck_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
)

type wantViolation struct {
	line   int
	reason importcheck.Reason
}

func TestAnalyzeSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		wantKind importcheck.OutcomeKind
		want     []wantViolation
	}{
		{
			name:     "top-level imports only",
			source:   "import os\nimport sys\nfrom collections import abc\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "empty file",
			source:   "",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "import in function body",
			source:   "import os\ndef f():\n    import sys\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 3, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "import in class body",
			source:   "class C:\n    import os\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInClass}},
		},
		{
			name:     "import in method body",
			source:   "class C:\n    def m(self):\n        import os\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 3, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "import in decorated function",
			source:   "@cached\ndef f():\n    import os\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 3, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "from-import in function",
			source:   "def f():\n    from os.path import join\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "wildcard import in function",
			source:   "def f():\n    from os.path import *\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "relative import in function",
			source:   "def f():\n    from . import sibling\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "conditional import at module level",
			source:   "import sys\nif sys.platform == 'win32':\n    import winreg\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 3, reason: importcheck.NestedInConditional}},
		},
		{
			name:     "import in loop body",
			source:   "for name in ('a', 'b'):\n    import importlib\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInConditional}},
		},
		{
			name:     "import in with body",
			source:   "import contextlib\nwith contextlib.suppress(ImportError):\n    import optional_mod\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "type-checking guard",
			source:   "if TYPE_CHECKING:\n    import typing_extensions\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "qualified type-checking guard",
			source:   "import typing\nif typing.TYPE_CHECKING:\n    import heavy_types\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "type-checking guard inside function",
			source:   "def f():\n    if TYPE_CHECKING:\n        import heavy_types\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "else branch of type-checking guard",
			source:   "from typing import TYPE_CHECKING\nif TYPE_CHECKING:\n    import fast_types\nelse:\n    import slow_types\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 5, reason: importcheck.NestedInConditional}},
		},
		{
			name:     "elif type-checking guard",
			source:   "import sys\nif sys.flags.dev_mode:\n    import faulthandler\nelif TYPE_CHECKING:\n    import heavy_types\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 3, reason: importcheck.NestedInConditional}},
		},
		{
			name: "optional dependency fallback",
			source: `try:
    import simplejson as json
except ImportError:
    import json
`,
			wantKind: importcheck.OutcomeClean,
		},
		{
			name: "fallback by shared root package",
			source: `try:
    import xml.etree.cElementTree as ElementTree
except ImportError:
    import xml.etree.ElementTree as ElementTree
`,
			wantKind: importcheck.OutcomeClean,
		},
		{
			name: "unrelated import in handler",
			source: `try:
    import foo
except ImportError:
    import bar
`,
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 4, reason: importcheck.NestedInExceptionHandler}},
		},
		{
			name: "handler body too long for fallback",
			source: `try:
    import simplejson as json
except ImportError:
    import json
    HAVE_SIMPLEJSON = False
    FALLBACK_LEVEL = 1
`,
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 4, reason: importcheck.NestedInExceptionHandler}},
		},
		{
			name:     "suppressed nested import",
			source:   "def f():\n    import pdb  # hookfang: allow\n",
			wantKind: importcheck.OutcomeClean,
		},
		{
			name:     "multiple modules one statement",
			source:   "def f():\n    import os, sys as system\n",
			wantKind: importcheck.OutcomeViolations,
			want:     []wantViolation{{line: 2, reason: importcheck.NestedInFunction}},
		},
		{
			name:     "violations ordered by line",
			source:   "import os\ndef f():\n    import sys\nx = 1\nif x:\n    pass\ndef g():\n    pass\nclass C:\n    import abc\n",
			wantKind: importcheck.OutcomeViolations,
			want: []wantViolation{
				{line: 3, reason: importcheck.NestedInFunction},
				{line: 10, reason: importcheck.NestedInClass},
			},
		},
	}

	analyzer := importcheck.New(importcheck.Config{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := analyzer.AnalyzeSource(context.Background(), "test.py", []byte(tt.source))

			require.Equal(t, tt.wantKind, outcome.Kind, "outcome: %+v", outcome)
			require.Len(t, outcome.Violations, len(tt.want))

			for i, want := range tt.want {
				assert.Equal(t, want.line, outcome.Violations[i].Line)
				assert.Equal(t, want.reason, outcome.Violations[i].Reason)
				assert.Equal(t, "test.py", outcome.Violations[i].Path)
			}
		})
	}
}

func TestAnalyzeSource_NestedFunctionViolationDetail(t *testing.T) {
	t.Parallel()

	analyzer := importcheck.New(importcheck.Config{})
	outcome := analyzer.AnalyzeSource(context.Background(), "sample.py",
		[]byte("import os\ndef f():\n    import sys\n"))

	require.Equal(t, importcheck.OutcomeViolations, outcome.Kind)
	require.Len(t, outcome.Violations, 1)

	v := outcome.Violations[0]
	assert.Equal(t, "sample.py", v.Path)
	assert.Equal(t, 3, v.Line)
	assert.Equal(t, 5, v.Column)
	assert.Equal(t, "import sys", v.Text)
	assert.Equal(t, importcheck.NestedInFunction, v.Reason)
	assert.Equal(t, "import nested in function body: import sys", v.Message())
}

func TestAnalyzeSource_ParseFailure(t *testing.T) {
	t.Parallel()

	analyzer := importcheck.New(importcheck.Config{})
	outcome := analyzer.AnalyzeSource(context.Background(), "broken.py", []byte("def f(:\n"))

	require.Equal(t, importcheck.OutcomeParseFailure, outcome.Kind)
	assert.Empty(t, outcome.Violations)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, "syntax error", outcome.Failure.Message)
	assert.Equal(t, 1, outcome.Failure.Line)
	assert.GreaterOrEqual(t, outcome.Failure.Column, 1)
	assert.False(t, outcome.IsClean())
}

func TestAnalyzeSource_Idempotent(t *testing.T) {
	t.Parallel()

	source := []byte("import os\ndef f():\n    import sys\nclass C:\n    import abc\n")
	analyzer := importcheck.New(importcheck.Config{})

	first := analyzer.AnalyzeSource(context.Background(), "repeat.py", source)
	second := analyzer.AnalyzeSource(context.Background(), "repeat.py", source)

	assert.Equal(t, first, second)
}

func TestAnalyzeSource_SkipModules(t *testing.T) {
	t.Parallel()

	analyzer := importcheck.New(importcheck.Config{SkipModules: []string{"debugpy", "devtools"}})

	outcome := analyzer.AnalyzeSource(context.Background(), "skip.py",
		[]byte("def f():\n    import debugpy\n    import devtools.profile\n"))
	assert.Equal(t, importcheck.OutcomeClean, outcome.Kind)

	outcome = analyzer.AnalyzeSource(context.Background(), "skip.py",
		[]byte("def f():\n    import debugpy\n    import sys\n"))
	require.Equal(t, importcheck.OutcomeViolations, outcome.Kind)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, 3, outcome.Violations[0].Line)
}

func TestAnalyzeSource_CustomSentinels(t *testing.T) {
	t.Parallel()

	analyzer := importcheck.New(importcheck.Config{TypeCheckingSentinels: []string{"MYPY"}})

	outcome := analyzer.AnalyzeSource(context.Background(), "mypy.py",
		[]byte("if MYPY:\n    import heavy\n"))
	assert.Equal(t, importcheck.OutcomeClean, outcome.Kind)

	// Configured sentinels replace the defaults.
	outcome = analyzer.AnalyzeSource(context.Background(), "mypy.py",
		[]byte("if TYPE_CHECKING:\n    import heavy\n"))
	assert.Equal(t, importcheck.OutcomeViolations, outcome.Kind)
}

func TestAnalyze_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    import sys\n"), 0o600))

	analyzer := importcheck.New(importcheck.Config{})
	outcome := analyzer.Analyze(context.Background(), path)

	require.Equal(t, importcheck.OutcomeViolations, outcome.Kind)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, path, outcome.Violations[0].Path)
}

func TestAnalyze_UnreadableFile(t *testing.T) {
	t.Parallel()

	analyzer := importcheck.New(importcheck.Config{})
	outcome := analyzer.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.py"))

	require.Equal(t, importcheck.OutcomeIOFailure, outcome.Kind)
	require.NotNil(t, outcome.Failure)
	assert.ErrorIs(t, outcome.Failure.Err, os.ErrNotExist)
	assert.Empty(t, outcome.Violations)
}
