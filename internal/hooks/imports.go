package hooks

import (
	"context"
	"path/filepath"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
)

func init() {
	Register(config.HookImports, newImportsHook)
}

// importsHook reports import statements nested below module top level.
type importsHook struct {
	analyzer *importcheck.Analyzer
}

func newImportsHook(cfg *config.Config) (Hook, error) {
	return &importsHook{
		analyzer: importcheck.New(importcheck.Config{
			TypeCheckingSentinels: cfg.Imports.TypeCheckingSentinels,
			SuppressionToken:      cfg.Imports.SuppressionToken,
			MaxFallbackStatements: cfg.Imports.MaxFallbackStatements,
			SkipModules:           cfg.Imports.SkipModules,
		}),
	}, nil
}

func (h *importsHook) Name() string { return config.HookImports }

func (h *importsHook) Description() string {
	return "report Python import statements nested inside functions, classes, or conditionals"
}

func (h *importsHook) Run(ctx context.Context, req Request) (Report, error) {
	var findings []Finding

	for _, rel := range req.Files {
		outcome := h.analyzer.Analyze(ctx, filepath.Join(req.Dir, filepath.FromSlash(rel)))
		findings = append(findings, outcomeFindings(rel, outcome)...)
	}

	return report(config.HookImports, findings), nil
}

// outcomeFindings flattens one analysis outcome into findings carrying the
// worktree-relative path.
func outcomeFindings(rel string, outcome importcheck.Outcome) []Finding {
	switch outcome.Kind {
	case importcheck.OutcomeClean:
		return nil
	case importcheck.OutcomeViolations:
		findings := make([]Finding, 0, len(outcome.Violations))
		for _, v := range outcome.Violations {
			findings = append(findings, Finding{
				Path:     rel,
				Line:     v.Line,
				Column:   v.Column,
				Message:  v.Message(),
				Severity: SeverityError,
				Code:     v.Reason.String(),
			})
		}

		return findings
	default:
		return []Finding{{
			Path:     rel,
			Line:     outcome.Failure.Line,
			Column:   outcome.Failure.Column,
			Message:  outcome.Failure.Message,
			Severity: SeverityError,
			Code:     outcome.Kind.String(),
		}}
	}
}
