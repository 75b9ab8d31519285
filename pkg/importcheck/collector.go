package importcheck

import (
	"cmp"
	"slices"
)

// collect turns the walked import sites into the ordered violation list for
// one file: module-top-level sites are allowed outright, skip-listed modules
// are ignored, the rest go through the exemption rules.
func collect(path string, sites []Site, classifier *Classifier, skip map[string]struct{}) []Violation {
	var violations []Violation

	for _, site := range sites {
		if site.Scope.ModuleOnly() {
			continue
		}

		if skippedImport(site.Import, skip) {
			continue
		}

		if classifier.Classify(site) != ExemptionNone {
			continue
		}

		violations = append(violations, Violation{
			Path:   path,
			Line:   site.Import.Line,
			Column: site.Import.Column,
			Text:   site.Import.Text,
			Reason: reasonFor(site.Scope.Top().Kind),
		})
	}

	slices.SortStableFunc(violations, func(a, b Violation) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}

		return cmp.Compare(a.Column, b.Column)
	})

	return violations
}

// skippedImport reports whether every module the statement names is on the
// skip list, matched by full dotted path or by root package.
func skippedImport(imp Import, skip map[string]struct{}) bool {
	if len(skip) == 0 || len(imp.Modules) == 0 {
		return false
	}

	for _, module := range imp.Modules {
		if _, ok := skip[module]; ok {
			continue
		}

		if _, ok := skip[rootModule(module)]; ok {
			continue
		}

		return false
	}

	return true
}

// reasonFor maps the kind of the innermost enclosing frame to a reason code.
func reasonFor(kind FrameKind) Reason {
	switch kind {
	case FrameClass:
		return NestedInClass
	case FrameConditionalBlock:
		return NestedInConditional
	case FrameExceptionHandler:
		return NestedInExceptionHandler
	default:
		return NestedInFunction
	}
}
