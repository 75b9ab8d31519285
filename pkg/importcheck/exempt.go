package importcheck

import "strings"

// Exemption is the recognized reason a nested import is allowed.
type Exemption int

const (
	// ExemptionNone marks a nested import with no recognized excuse.
	ExemptionNone Exemption = iota

	// TypeCheckingGuard excuses imports under a type-checking sentinel
	// condition; those blocks never execute at runtime.
	TypeCheckingGuard

	// OptionalDependencyFallback excuses the handler side of the
	// try-import/except-import fallback idiom.
	OptionalDependencyFallback

	// ExplicitSuppression excuses imports whose line carries the inline
	// suppression token.
	ExplicitSuppression
)

// String returns the exemption as a short lowercase label.
func (e Exemption) String() string {
	switch e {
	case TypeCheckingGuard:
		return "type-checking guard"
	case OptionalDependencyFallback:
		return "optional-dependency fallback"
	case ExplicitSuppression:
		return "explicit suppression"
	default:
		return "none"
	}
}

// rule is one entry of the exemption table: a named predicate and the
// exemption it grants.
type rule struct {
	name      string
	exemption Exemption
	applies   func(c *Classifier, site Site) bool
}

// exemptionRules is evaluated in order; the first matching rule wins.
var exemptionRules = []rule{
	{name: "type-checking-guard", exemption: TypeCheckingGuard, applies: (*Classifier).underTypeCheckingGuard},
	{name: "optional-dependency-fallback", exemption: OptionalDependencyFallback, applies: (*Classifier).fallbackImport},
	{name: "explicit-suppression", exemption: ExplicitSuppression, applies: (*Classifier).suppressedOnLine},
}

// Classifier decides whether a nested import is excused.
type Classifier struct {
	token       string
	maxFallback int
}

// NewClassifier builds a classifier from the analyzer configuration.
// Zero-value config fields fall back to defaults.
func NewClassifier(cfg Config) *Classifier {
	cfg = cfg.withDefaults()

	return &Classifier{
		token:       cfg.SuppressionToken,
		maxFallback: cfg.MaxFallbackStatements,
	}
}

// Classify runs the exemption rules in order and returns the first match.
func (c *Classifier) Classify(site Site) Exemption {
	for _, r := range exemptionRules {
		if r.applies(c, site) {
			return r.exemption
		}
	}

	return ExemptionNone
}

// underTypeCheckingGuard reports whether any enclosing block is guarded by a
// type-checking sentinel. Such code never runs, so the import is harmless at
// any depth.
func (c *Classifier) underTypeCheckingGuard(site Site) bool {
	return site.Scope.Contains(FrameTypeCheckingBlock)
}

// fallbackImport recognizes the except-side import of the try-import
// fallback idiom: a short handler at module level whose matching try block
// attempts an import of the same or a related module.
func (c *Classifier) fallbackImport(site Site) bool {
	if site.Scope.Contains(FrameFunction) || site.Scope.Contains(FrameClass) {
		return false
	}

	frame, ok := site.Scope.InnermostHandler()
	if !ok || frame.Handler == nil {
		return false
	}

	if frame.Handler.Statements > c.maxFallback {
		return false
	}

	for _, tryImp := range frame.Handler.TryImports {
		if relatedImports(site.Import, tryImp) {
			return true
		}
	}

	return false
}

// relatedImports reports whether two imports target the same dependency:
// equal module paths, a shared root package, or a shared bound name (the
// `import simplejson as json` / `import json` pair).
func relatedImports(a, b Import) bool {
	for _, am := range a.Modules {
		for _, bm := range b.Modules {
			if am == bm || rootModule(am) == rootModule(bm) {
				return true
			}
		}
	}

	for _, ab := range a.Bindings {
		for _, bb := range b.Bindings {
			if ab == bb {
				return true
			}
		}
	}

	return false
}

// suppressedOnLine reports whether the import line carries the suppression
// token in its comment tail. Purely lexical: the token is searched after the
// first hash on the line, with no parser comment attachment involved.
func (c *Classifier) suppressedOnLine(site Site) bool {
	if c.token == "" {
		return false
	}

	idx := strings.IndexByte(site.LineText, '#')
	if idx < 0 {
		return false
	}

	return strings.Contains(site.LineText[idx:], c.token)
}
