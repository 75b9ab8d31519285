package pysrc

import (
	"errors"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/hookfang/pkg/safeconv"
)

// Sentinel errors for parser operations.
var (
	errPoolType   = errors.New("pysrc: unexpected parser pool type")
	errNoRootNode = errors.New("pysrc: no root node")
)

// Tree is one parsed Python source file. It owns the underlying tree-sitter
// tree; Close releases it. A Tree is immutable after parsing and must not be
// shared across goroutines while another goroutine may Close it.
type Tree struct {
	tree   *sitter.Tree
	root   sitter.Node
	source []byte
}

// Root returns the module node of the parse tree.
func (t *Tree) Root() sitter.Node {
	return t.root
}

// Source returns the source text the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Close releases the underlying tree-sitter tree. Safe to call more than once.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// ParseError is a syntax error located in the source.
type ParseError struct {
	Line    int // 1-based.
	Column  int // 1-based.
	Message string
}

// syntaxErrorMessage is the message attached to tree-sitter ERROR nodes.
const syntaxErrorMessage = "syntax error"

// FirstError reports the first syntax error in the tree, in document order.
// The second return is false when the tree parsed cleanly.
func (t *Tree) FirstError() (ParseError, bool) {
	if !t.root.HasError() {
		return ParseError{}, false
	}

	errNode := firstErrorNode(t.root)
	if errNode.IsNull() {
		// The tree has an error flag but no ERROR node, which happens when
		// the only problem is a missing token. Report the root position.
		errNode = t.root
	}

	return ParseError{
		Line:    Line(errNode),
		Column:  Column(errNode),
		Message: syntaxErrorMessage,
	}, true
}

// firstErrorNode walks the subtree depth-first for the first ERROR node,
// descending only into branches that contain an error.
func firstErrorNode(n sitter.Node) sitter.Node {
	if n.Type() == nodeError {
		return n
	}

	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if !child.HasError() {
			continue
		}

		if found := firstErrorNode(child); !found.IsNull() {
			return found
		}
	}

	return sitter.Node{}
}

// Text returns the source text covered by the node.
func (t *Tree) Text(n sitter.Node) string {
	start := n.StartByte()
	end := n.EndByte()

	if start >= end || uint(len(t.source)) < end {
		return ""
	}

	return string(t.source[start:end])
}

// Line returns the 1-based line of the node's start position.
func Line(n sitter.Node) int {
	return safeconv.MustUintToInt(n.StartPoint().Row) + 1
}

// Column returns the 1-based column of the node's start position.
func Column(n sitter.Node) int {
	return safeconv.MustUintToInt(n.StartPoint().Column) + 1
}

// EndLine returns the 1-based line of the node's end position.
func EndLine(n sitter.Node) int {
	return safeconv.MustUintToInt(n.EndPoint().Row) + 1
}
