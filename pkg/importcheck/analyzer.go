// Package importcheck reports Python import statements that sit outside
// module top level. Imports nested in functions, classes, conditionals or
// exception handlers are violations unless a recognized idiom excuses them:
// a type-checking-only guard, an optional-dependency try/except fallback, or
// an explicit inline suppression token. Every file yields a single Outcome
// value; syntax errors and unreadable files are outcomes too, never partial
// results.
package importcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/hookfang/pkg/pysrc"
)

// Defaults for the configurable allow-lists.
const (
	DefaultSuppressionToken      = "hookfang: allow"
	DefaultMaxFallbackStatements = 2
)

// DefaultTypeCheckingSentinels returns the conditions recognized as
// type-checking-only guards out of the box.
func DefaultTypeCheckingSentinels() []string {
	return []string{"TYPE_CHECKING", "typing.TYPE_CHECKING"}
}

// Config carries the configurable allow-lists of the checker. The zero value
// selects the defaults.
type Config struct {
	// TypeCheckingSentinels are if conditions whose body never runs at
	// runtime, such as TYPE_CHECKING.
	TypeCheckingSentinels []string

	// SuppressionToken silences a finding when present in the trailing
	// comment of the import line.
	SuppressionToken string

	// MaxFallbackStatements caps the handler body size for the
	// optional-dependency fallback idiom.
	MaxFallbackStatements int

	// SkipModules lists module paths whose imports are never reported,
	// matched by full dotted path or root package.
	SkipModules []string
}

// Analyzer runs the import-location analysis. One analyzer wraps one parser
// pool and is safe for concurrent use; files are analyzed independently with
// no shared state between them.
type Analyzer struct {
	parser     *pysrc.Parser
	classifier *Classifier
	sentinels  map[string]struct{}
	skip       map[string]struct{}
}

// withDefaults fills zero-value fields with the documented defaults.
func (c Config) withDefaults() Config {
	if len(c.TypeCheckingSentinels) == 0 {
		c.TypeCheckingSentinels = DefaultTypeCheckingSentinels()
	}

	if c.SuppressionToken == "" {
		c.SuppressionToken = DefaultSuppressionToken
	}

	if c.MaxFallbackStatements == 0 {
		c.MaxFallbackStatements = DefaultMaxFallbackStatements
	}

	return c
}

// New builds an analyzer. Zero-value config fields fall back to defaults.
func New(cfg Config) *Analyzer {
	cfg = cfg.withDefaults()

	return &Analyzer{
		parser:     pysrc.NewParser(),
		classifier: NewClassifier(cfg),
		sentinels:  stringSet(cfg.TypeCheckingSentinels),
		skip:       stringSet(cfg.SkipModules),
	}
}

// Analyze reads and analyzes one file. Reading is the only effectful step;
// an unreadable file yields an io-failure outcome rather than an error.
func (a *Analyzer) Analyze(ctx context.Context, path string) Outcome {
	content, err := os.ReadFile(path)
	if err != nil {
		return ioFailureOutcome(path, fmt.Errorf("read source file: %w", err))
	}

	return a.AnalyzeSource(ctx, path, content)
}

// AnalyzeSource analyzes in-memory content, as served by editor buffers.
// Identical content always yields identical ordered output.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, content []byte) Outcome {
	tree, err := a.parser.Parse(ctx, content)
	if err != nil {
		return ioFailureOutcome(path, err)
	}
	defer tree.Close()

	if perr, failed := tree.FirstError(); failed {
		return parseFailureOutcome(path, perr)
	}

	sites := walkImports(tree, a.sentinels)

	return violationsOutcome(path, collect(path, sites, a.classifier, a.skip))
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}
