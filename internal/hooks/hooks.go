// Package hooks defines the pre-commit hook contract and the registry the
// runner and the serving surfaces resolve hooks from. Each hook wraps one
// checker package and translates its outcomes into findings.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
)

// Severity grades a finding for rendering and exit-code purposes.
type Severity int

const (
	// SeverityWarning marks a finding that was repaired in place and only
	// needs restaging.
	SeverityWarning Severity = iota

	// SeverityError marks a finding that fails the hook run.
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding is one diagnostic produced by a hook for one file. Line and
// Column are 1-based; zero means the finding concerns the whole file. Code
// is a stable machine-readable category, such as the violation reason or
// the header status.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
}

// Request carries the inputs of one hook run.
type Request struct {
	// Dir is the repository worktree root. Empty means the current
	// directory.
	Dir string

	// Files are the worktree-relative paths to check.
	Files []string
}

// Report is the result of one hook run over a file set.
type Report struct {
	Hook     string    `json:"hook"`
	Findings []Finding `json:"findings,omitempty"`
	Passed   bool      `json:"passed"`
}

// Hook is one pre-commit check. Implementations are safe for concurrent
// Run calls.
type Hook interface {
	Name() string
	Description() string
	Run(ctx context.Context, req Request) (Report, error)
}

// Factory builds a configured hook instance.
type Factory func(cfg *config.Config) (Hook, error)

// ErrUnknownHook indicates a name with no registered factory.
var ErrUnknownHook = errors.New("no registered hook")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a hook factory under a name. Later registrations for the
// same name win; hooks register themselves from init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = factory
}

// New builds the named hook from the configuration.
func New(name string, cfg *config.Config) (Hook, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHook, name)
	}

	return factory(cfg)
}

// Names returns the registered hook names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// report builds the verdict. Any finding fails the run, warnings included:
// a warning marks a file rewritten in place, which must be staged and
// re-checked before the commit proceeds.
func report(name string, findings []Finding) Report {
	return Report{Hook: name, Findings: findings, Passed: len(findings) == 0}
}
