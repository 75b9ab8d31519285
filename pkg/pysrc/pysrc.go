// Package pysrc parses Python source text into tree-sitter syntax trees.
// It is the only package that touches the tree-sitter bindings directly;
// callers work with [Tree] and [sitter.Node] values and never manage
// grammar or parser lifetimes themselves.
package pysrc

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

var (
	pythonOnce sync.Once
	pythonLang *sitter.Language
)

// Language returns the tree-sitter Python language, initialized once.
func Language() *sitter.Language {
	pythonOnce.Do(func() {
		pythonLang = sitter.NewLanguage(python.GetLanguage())
	})

	return pythonLang
}

// Parser turns Python source text into syntax trees. A Parser is safe for
// concurrent use; underlying tree-sitter parsers are pooled per instance.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser for Python source.
func NewParser() *Parser {
	lang := Language()

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Parse parses source content into a syntax tree. The returned Tree owns the
// underlying tree-sitter tree and must be closed by the caller. Syntax errors
// do not fail the parse; inspect [Tree.FirstError] for them.
func (p *Parser) Parse(ctx context.Context, content []byte) (*Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	return &Tree{tree: tree, root: root, source: content}, nil
}
