package importcheck

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/hookfang/pkg/pysrc"
)

// Import is one import statement as written in the source: the module paths
// it names, the local names it binds, and its position.
type Import struct {
	Line     int
	Column   int
	Text     string
	Modules  []string
	Bindings []string
	Wildcard bool
}

// FirstLine returns the first source line of the statement text, which is the
// whole statement except for parenthesized multi-line from-imports.
func (imp Import) FirstLine() string {
	text, _, _ := strings.Cut(imp.Text, "\n")

	return text
}

// newImport extracts the import described by an import_statement,
// import_from_statement or future_import_statement node.
func newImport(tree *pysrc.Tree, node sitter.Node) Import {
	imp := Import{
		Line:   pysrc.Line(node),
		Column: pysrc.Column(node),
		Text:   tree.Text(node),
	}

	switch node.Type() {
	case pysrc.NodeImport:
		imp.readPlainImport(tree, node)
	case pysrc.NodeImportFrom, pysrc.NodeFutureImport:
		imp.readFromImport(tree, node)
	}

	return imp
}

// readPlainImport fills in the modules of an `import a.b, c as d` statement.
// A dotted import without an alias binds its root package name.
func (imp *Import) readPlainImport(tree *pysrc.Tree, node sitter.Node) {
	for idx := range node.NamedChildCount() {
		child := node.NamedChild(idx)

		switch child.Type() {
		case pysrc.NodeDottedName:
			module := tree.Text(child)
			imp.Modules = append(imp.Modules, module)
			imp.Bindings = append(imp.Bindings, rootModule(module))
		case pysrc.NodeAliasedImport:
			module, alias := aliasedParts(tree, child)
			imp.Modules = append(imp.Modules, module)
			imp.Bindings = append(imp.Bindings, alias)
		}
	}
}

// readFromImport fills in a `from a.b import c as d, e` statement. The names
// after the import keyword are the bindings; the clause before it is the
// module. Relative imports keep their leading dots.
func (imp *Import) readFromImport(tree *pysrc.Tree, node sitter.Node) {
	module := node.ChildByFieldName(pysrc.FieldModuleName)
	if !module.IsNull() {
		imp.Modules = append(imp.Modules, tree.Text(module))
	}

	// Named children before the import keyword belong to the module clause.
	seenImportKeyword := false

	for idx := range node.ChildCount() {
		child := node.Child(idx)

		if child.Type() == "import" {
			seenImportKeyword = true

			continue
		}

		if !seenImportKeyword {
			continue
		}

		switch child.Type() {
		case pysrc.NodeDottedName, pysrc.NodeIdentifier:
			imp.Bindings = append(imp.Bindings, rootModule(tree.Text(child)))
		case pysrc.NodeAliasedImport:
			_, alias := aliasedParts(tree, child)
			imp.Bindings = append(imp.Bindings, alias)
		case pysrc.NodeWildcardImport:
			imp.Wildcard = true
		}
	}
}

// aliasedParts splits an aliased_import node into its module path and the
// alias identifier it binds.
func aliasedParts(tree *pysrc.Tree, node sitter.Node) (module, alias string) {
	name := node.ChildByFieldName(pysrc.FieldName)
	if !name.IsNull() {
		module = tree.Text(name)
	}

	alias = module

	aliasNode := node.ChildByFieldName(pysrc.FieldAlias)
	if !aliasNode.IsNull() {
		alias = tree.Text(aliasNode)
	}

	return module, alias
}

// rootModule returns the first component of a dotted module path. Relative
// paths (leading dot) are returned unchanged.
func rootModule(module string) string {
	if strings.HasPrefix(module, ".") {
		return module
	}

	root, _, _ := strings.Cut(module, ".")

	return root
}
