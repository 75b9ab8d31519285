package hooks

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/pkg/gitlib"
	"github.com/Sumatoshi-tech/hookfang/pkg/versionbump"
)

func init() {
	Register(config.HookVersionBump, newVersionBumpHook)
}

// versionBumpHook checks that changed projects bumped their version line.
type versionBumpHook struct {
	versionFiles     []string
	upstreamFallback bool
}

func newVersionBumpHook(cfg *config.Config) (Hook, error) {
	return &versionBumpHook{
		versionFiles:     cfg.VersionBump.VersionFiles,
		upstreamFallback: cfg.VersionBump.UpstreamFallback,
	}, nil
}

func (h *versionBumpHook) Name() string { return config.HookVersionBump }

func (h *versionBumpHook) Description() string {
	return "require a version bump in projects whose files changed"
}

func (h *versionBumpHook) Run(ctx context.Context, req Request) (Report, error) {
	repo, err := openRepo(req.Dir)
	if err != nil {
		return Report{}, err
	}
	defer repo.Free()

	checker := versionbump.NewChecker(repo, h.versionFiles).
		WithUpstreamFallback(h.upstreamFallback)

	results, err := checker.Check(ctx, req.Files)
	if err != nil {
		return Report{}, fmt.Errorf("version-bump check: %w", err)
	}

	var findings []Finding

	for _, result := range results {
		if result.Bumped {
			continue
		}

		findings = append(findings, Finding{
			Path:     result.VersionFile,
			Message:  fmt.Sprintf("version %s not bumped; changed files belong to this project", result.Version),
			Severity: SeverityError,
			Code:     "version-not-bumped",
		})
	}

	return report(config.HookVersionBump, findings), nil
}

// openRepo resolves the repository owning dir, searching upward.
func openRepo(dir string) (*gitlib.Repository, error) {
	if dir == "" {
		dir = "."
	}

	repo, err := gitlib.OpenRepositoryAt(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}

	return repo, nil
}
