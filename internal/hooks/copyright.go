package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/pkg/copyright"
)

func init() {
	Register(config.HookCopyright, newCopyrightHook)
}

// ErrNoOwner indicates the copyright hook is enabled without an owner.
var ErrNoOwner = errors.New("copyright.owner is not configured")

// copyrightHook checks and optionally repairs copyright headers.
type copyrightHook struct {
	owner     string
	update    bool
	headBytes int
}

func newCopyrightHook(cfg *config.Config) (Hook, error) {
	if cfg.Copyright.Owner == "" {
		return nil, ErrNoOwner
	}

	return &copyrightHook{
		owner:     cfg.Copyright.Owner,
		update:    cfg.Copyright.Update,
		headBytes: cfg.Copyright.HeadBytes,
	}, nil
}

func (h *copyrightHook) Name() string { return config.HookCopyright }

func (h *copyrightHook) Description() string {
	return "require a current copyright header in changed source files"
}

func (h *copyrightHook) Run(ctx context.Context, req Request) (Report, error) {
	repo, err := openRepo(req.Dir)
	if err != nil {
		return Report{}, err
	}
	defer repo.Free()

	checker := copyright.NewChecker(repo, h.owner, h.update).
		WithHeadBytes(h.headBytes)

	var findings []Finding

	for _, rel := range req.Files {
		result, checkErr := checker.CheckFile(ctx, rel)
		if checkErr != nil {
			return Report{}, fmt.Errorf("copyright check %s: %w", rel, checkErr)
		}

		if result.Status.Passed() {
			continue
		}

		findings = append(findings, Finding{
			Path:     rel,
			Message:  result.Message,
			Severity: copyrightSeverity(result.Status),
			Code:     result.Status.String(),
		})
	}

	return report(config.HookCopyright, findings), nil
}

// copyrightSeverity downgrades in-place repairs to warnings: the file was
// rewritten and only needs restaging.
func copyrightSeverity(status copyright.Status) Severity {
	if status == copyright.StatusUpdated || status == copyright.StatusInserted {
		return SeverityWarning
	}

	return SeverityError
}
