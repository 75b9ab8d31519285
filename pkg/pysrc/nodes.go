package pysrc

// Node type names of the Python grammar. Only the subset the import
// analysis walks over is listed here.
const (
	NodeModule              = "module"
	NodeImport              = "import_statement"
	NodeImportFrom          = "import_from_statement"
	NodeFutureImport        = "future_import_statement"
	NodeDottedName          = "dotted_name"
	NodeAliasedImport       = "aliased_import"
	NodeWildcardImport      = "wildcard_import"
	NodeRelativeImport      = "relative_import"
	NodeImportPrefix        = "import_prefix"
	NodeFunctionDef         = "function_definition"
	NodeAsyncFunctionDef    = "async_function_definition"
	NodeClassDef            = "class_definition"
	NodeDecoratedDef        = "decorated_definition"
	NodeDecorator           = "decorator"
	NodeBlock               = "block"
	NodeExpressionStatement = "expression_statement"
	NodeAssignment          = "assignment"
	NodeIdentifier          = "identifier"
	NodeAttribute           = "attribute"
	NodeComment             = "comment"
	NodeString              = "string"
	NodeCall                = "call"
	NodeIfStatement         = "if_statement"
	NodeElifClause          = "elif_clause"
	NodeElseClause          = "else_clause"
	NodeTryStatement        = "try_statement"
	NodeExceptClause        = "except_clause"
	NodeExceptGroupClause   = "except_group_clause"
	NodeFinallyClause       = "finally_clause"
	NodeWithStatement       = "with_statement"
	NodeWhileStatement      = "while_statement"
	NodeForStatement        = "for_statement"
	NodeMatchStatement      = "match_statement"
	NodeCaseClause          = "case_clause"

	nodeError = "ERROR"
)

// Grammar field names used with ChildByFieldName.
const (
	FieldCondition   = "condition"
	FieldConsequence = "consequence"
	FieldAlternative = "alternative"
	FieldBody        = "body"
	FieldName        = "name"
	FieldAlias       = "alias"
	FieldModuleName  = "module_name"
)
