package importcheck

import (
	"bytes"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/hookfang/pkg/pysrc"
)

// Site is one import statement paired with the scope stack in effect at its
// position, plus the raw text of the line it starts on.
type Site struct {
	Import   Import
	Scope    ScopeContext
	LineText string
}

// walker performs the depth-first scope-tracking traversal. It owns a single
// mutable stack; every yielded site gets a snapshot.
type walker struct {
	tree      *pysrc.Tree
	lines     [][]byte
	sentinels map[string]struct{}
	scope     ScopeContext
	sites     []Site
}

// walkImports returns every import statement of the tree in source order,
// each paired with its enclosing scope stack. An if branch whose condition
// matches a type-checking sentinel pushes FrameTypeCheckingBlock instead of
// FrameConditionalBlock.
func walkImports(tree *pysrc.Tree, sentinels map[string]struct{}) []Site {
	w := &walker{
		tree:      tree,
		lines:     bytes.Split(tree.Source(), []byte("\n")),
		sentinels: sentinels,
		scope:     NewScopeContext(),
	}

	w.visit(tree.Root())

	return w.sites
}

func (w *walker) visit(n sitter.Node) {
	switch n.Type() {
	case pysrc.NodeImport, pysrc.NodeImportFrom, pysrc.NodeFutureImport:
		w.yield(n)
	case pysrc.NodeFunctionDef, pysrc.NodeAsyncFunctionDef:
		w.visitDefinition(n, FrameFunction)
	case pysrc.NodeClassDef:
		w.visitDefinition(n, FrameClass)
	case pysrc.NodeIfStatement:
		w.visitIf(n)
	case pysrc.NodeTryStatement:
		w.visitTry(n)
	case pysrc.NodeWhileStatement, pysrc.NodeForStatement:
		w.visitLoop(n)
	case pysrc.NodeMatchStatement:
		w.visitMatch(n)
	default:
		w.visitChildren(n)
	}
}

func (w *walker) visitChildren(n sitter.Node) {
	for idx := range n.NamedChildCount() {
		w.visit(n.NamedChild(idx))
	}
}

// pushed visits the children of a node under one extra scope frame.
func (w *walker) pushed(f Frame, n sitter.Node) {
	w.scope.Push(f)
	w.visitChildren(n)
	w.scope.Pop()
}

func (w *walker) yield(n sitter.Node) {
	imp := newImport(w.tree, n)

	w.sites = append(w.sites, Site{
		Import:   imp,
		Scope:    w.scope.Snapshot(),
		LineText: w.lineText(imp.Line),
	})
}

func (w *walker) lineText(line int) string {
	if line < 1 || line > len(w.lines) {
		return ""
	}

	return string(w.lines[line-1])
}

// visitDefinition pushes a frame for the body of a function or class
// definition. Decorators, parameters and base classes cannot hold import
// statements, so only the body is walked.
func (w *walker) visitDefinition(n sitter.Node, kind FrameKind) {
	body := n.ChildByFieldName(pysrc.FieldBody)
	if body.IsNull() {
		return
	}

	w.pushed(frameFor(kind, n), body)
}

func (w *walker) visitIf(n sitter.Node) {
	consequence := n.ChildByFieldName(pysrc.FieldConsequence)
	if !consequence.IsNull() {
		w.pushed(w.branchFrame(n.ChildByFieldName(pysrc.FieldCondition), consequence), consequence)
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case pysrc.NodeElifClause:
			body := child.ChildByFieldName(pysrc.FieldConsequence)
			if !body.IsNull() {
				w.pushed(w.branchFrame(child.ChildByFieldName(pysrc.FieldCondition), body), body)
			}
		case pysrc.NodeElseClause:
			body := child.ChildByFieldName(pysrc.FieldBody)
			if !body.IsNull() {
				w.pushed(frameFor(FrameConditionalBlock, body), body)
			}
		}
	}
}

// branchFrame classifies one if/elif branch: a condition matching a
// type-checking sentinel marks the branch body as never executing at runtime.
func (w *walker) branchFrame(condition, body sitter.Node) Frame {
	kind := FrameConditionalBlock
	if !condition.IsNull() && w.isSentinel(w.tree.Text(condition)) {
		kind = FrameTypeCheckingBlock
	}

	return frameFor(kind, body)
}

func (w *walker) isSentinel(condition string) bool {
	condition = strings.TrimSpace(condition)
	for strings.HasPrefix(condition, "(") && strings.HasSuffix(condition, ")") {
		condition = strings.TrimSpace(condition[1 : len(condition)-1])
	}

	_, ok := w.sentinels[condition]

	return ok
}

// visitTry walks a try statement. The try body and any else/finally clauses
// run unconditionally when the module loads, so they add no frame; each
// except body gets an exception-handler frame carrying the try-block imports
// for the fallback rule.
func (w *walker) visitTry(n sitter.Node) {
	var tryImports []Import

	if body := n.ChildByFieldName(pysrc.FieldBody); !body.IsNull() {
		tryImports = w.directImports(body)
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case pysrc.NodeBlock:
			w.visitChildren(child)
		case pysrc.NodeExceptClause, pysrc.NodeExceptGroupClause:
			w.visitHandler(child, tryImports)
		case pysrc.NodeElseClause, pysrc.NodeFinallyClause:
			w.visitChildren(child)
		}
	}
}

func (w *walker) visitHandler(n sitter.Node, tryImports []Import) {
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() != pysrc.NodeBlock {
			continue
		}

		frame := frameFor(FrameExceptionHandler, n)
		frame.Handler = &HandlerContext{
			Statements: countStatements(child),
			TryImports: tryImports,
		}

		w.pushed(frame, child)
	}
}

// visitLoop pushes a conditional frame for a loop body: the body may run
// zero times, so an import inside it is not a top-level import. A loop else
// clause runs conditionally as well.
func (w *walker) visitLoop(n sitter.Node) {
	if body := n.ChildByFieldName(pysrc.FieldBody); !body.IsNull() {
		w.pushed(frameFor(FrameConditionalBlock, n), body)
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == pysrc.NodeElseClause {
			w.pushed(frameFor(FrameConditionalBlock, child), child)
		}
	}
}

// visitMatch pushes a conditional frame for each case body.
func (w *walker) visitMatch(n sitter.Node) {
	body := n.ChildByFieldName(pysrc.FieldBody)
	if body.IsNull() {
		return
	}

	for idx := range body.NamedChildCount() {
		clause := body.NamedChild(idx)
		if clause.Type() != pysrc.NodeCaseClause {
			continue
		}

		for blockIdx := range clause.NamedChildCount() {
			block := clause.NamedChild(blockIdx)
			if block.Type() == pysrc.NodeBlock {
				w.pushed(frameFor(FrameConditionalBlock, clause), block)
			}
		}
	}
}

// directImports collects the import statements that are immediate children of
// a block.
func (w *walker) directImports(block sitter.Node) []Import {
	var imports []Import

	for idx := range block.NamedChildCount() {
		child := block.NamedChild(idx)

		switch child.Type() {
		case pysrc.NodeImport, pysrc.NodeImportFrom, pysrc.NodeFutureImport:
			imports = append(imports, newImport(w.tree, child))
		}
	}

	return imports
}

// countStatements counts the statements of a block, comments excluded.
func countStatements(block sitter.Node) int {
	count := 0

	for idx := range block.NamedChildCount() {
		if block.NamedChild(idx).Type() != pysrc.NodeComment {
			count++
		}
	}

	return count
}

func frameFor(kind FrameKind, n sitter.Node) Frame {
	return Frame{Kind: kind, StartLine: pysrc.Line(n), EndLine: pysrc.EndLine(n)}
}
