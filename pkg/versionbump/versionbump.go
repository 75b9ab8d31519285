// Package versionbump verifies that a package version was bumped whenever
// files of that package changed. For every changed input file the nearest
// enclosing directory holding a version file (pyproject.toml or setup.cfg)
// identifies the owning project; the check passes when the diff against the
// upstream tip inserts a line carrying the current version.
package versionbump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/hookfang/pkg/gitlib"
)

// versionPattern matches a version assignment in pyproject.toml or
// setup.cfg, quoted or bare.
var versionPattern = regexp.MustCompile(`version = "?(([0-9]+)\.?([0-9+])?\.?([0-9+])?\.?([0-9+])?)"?`)

// DefaultVersionFiles returns the version file names probed in order within
// each candidate directory.
func DefaultVersionFiles() []string {
	return []string{"pyproject.toml", "setup.cfg"}
}

// Result is the verdict for one version file owning at least one changed
// input file. Version is empty when the file carries no version entry, in
// which case the check passes vacuously.
type Result struct {
	VersionFile string `json:"version_file"`
	Version     string `json:"version,omitempty"`
	Bumped      bool   `json:"bumped"`
}

// Checker runs the version-bump check against one repository.
type Checker struct {
	repo             *gitlib.Repository
	versionFiles     []string
	differ           *diffmatchpatch.DiffMatchPatch
	upstreamFallback bool
}

// NewChecker builds a checker. An empty versionFiles slice selects the
// defaults.
func NewChecker(repo *gitlib.Repository, versionFiles []string) *Checker {
	if len(versionFiles) == 0 {
		versionFiles = DefaultVersionFiles()
	}

	return &Checker{
		repo:             repo,
		versionFiles:     versionFiles,
		differ:           diffmatchpatch.New(),
		upstreamFallback: true,
	}
}

// WithUpstreamFallback controls whether HEAD~ serves as the diff base when
// the branch has no configured upstream. Disabled, such a branch passes
// soft.
func (c *Checker) WithUpstreamFallback(enabled bool) *Checker {
	c.upstreamFallback = enabled

	return c
}

// Check inspects the changed files and returns one result per owning version
// file, ordered by path. Files are worktree-relative. With no diff base (a
// single-commit repository without an upstream) the check passes soft: every
// owning project counts as bumped.
func (c *Checker) Check(ctx context.Context, files []string) ([]Result, error) {
	base, hasBase, err := c.diffBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve diff base: %w", err)
	}

	dirs, err := c.changedDirs(ctx, base, hasBase, files)
	if err != nil {
		return nil, err
	}

	var results []Result

	seen := make(map[string]struct{})

	for _, dir := range dirs {
		for _, name := range c.versionFiles {
			rel := path.Join(dir, name)
			if _, ok := seen[rel]; ok {
				continue
			}

			if _, statErr := os.Stat(filepath.Join(c.repo.Path(), filepath.FromSlash(rel))); statErr != nil {
				continue
			}

			seen[rel] = struct{}{}

			result, checkErr := c.checkVersionFile(ctx, base, hasBase, rel)
			if checkErr != nil {
				return nil, checkErr
			}

			results = append(results, result)
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		if a.VersionFile < b.VersionFile {
			return -1
		}

		if a.VersionFile > b.VersionFile {
			return 1
		}

		return 0
	})

	return results, nil
}

// diffBase resolves the commit the worktree is compared against.
func (c *Checker) diffBase(ctx context.Context) (gitlib.Hash, bool, error) {
	if c.upstreamFallback {
		return c.repo.UpstreamTip(ctx)
	}

	return c.repo.Upstream()
}

// changedDirs returns every ancestor directory of the input files that
// actually changed against the base, sorted, root first.
func (c *Checker) changedDirs(ctx context.Context, base gitlib.Hash, hasBase bool, files []string) ([]string, error) {
	dirSet := make(map[string]struct{})

	for _, file := range files {
		rel := filepath.ToSlash(file)

		changed, err := c.fileChanged(ctx, base, hasBase, rel)
		if err != nil {
			return nil, err
		}

		if !changed {
			continue
		}

		for dir := path.Dir(rel); ; dir = path.Dir(dir) {
			if _, ok := dirSet[dir]; ok {
				break
			}

			dirSet[dir] = struct{}{}

			if dir == "." || dir == "/" {
				break
			}
		}
	}

	dirs := make([]string, 0, len(dirSet))
	for dir := range dirSet {
		dirs = append(dirs, dir)
	}

	slices.Sort(dirs)

	return dirs, nil
}

// fileChanged reports whether the worktree content of rel differs from its
// content at the base commit. Without a base every existing file counts as
// changed.
func (c *Checker) fileChanged(ctx context.Context, base gitlib.Hash, hasBase bool, rel string) (bool, error) {
	current, err := os.ReadFile(filepath.Join(c.repo.Path(), filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Deleted files still changed relative to the base.
			return hasBase, nil
		}

		return false, fmt.Errorf("read %s: %w", rel, err)
	}

	if !hasBase {
		return true, nil
	}

	baseContent, err := c.repo.FileAtCommit(ctx, base, rel)
	if err != nil {
		// Not present at the base: the file is new.
		return true, nil
	}

	return !bytes.Equal(current, baseContent), nil
}

// checkVersionFile decides whether the version entry of rel was bumped.
func (c *Checker) checkVersionFile(ctx context.Context, base gitlib.Hash, hasBase bool, rel string) (Result, error) {
	content, err := os.ReadFile(filepath.Join(c.repo.Path(), filepath.FromSlash(rel)))
	if err != nil {
		return Result{}, fmt.Errorf("read version file %s: %w", rel, err)
	}

	match := versionPattern.FindSubmatch(content)
	if match == nil {
		// No version entry to bump.
		return Result{VersionFile: rel, Bumped: true}, nil
	}

	result := Result{VersionFile: rel, Version: string(match[1])}

	if !hasBase {
		result.Bumped = true

		return result, nil
	}

	baseContent, err := c.repo.FileAtCommit(ctx, base, rel)
	if err != nil {
		// The version file itself is new; its version is fresh.
		result.Bumped = true

		return result, nil
	}

	result.Bumped = c.insertedVersionLine(string(baseContent), string(content))

	return result, nil
}

// insertedVersionLine reports whether the line diff from old to current
// inserts a line matching the version pattern.
func (c *Checker) insertedVersionLine(old, current string) bool {
	oldChars, curChars, lines := c.differ.DiffLinesToChars(old, current)
	diffs := c.differ.DiffCharsToLines(c.differ.DiffMain(oldChars, curChars, false), lines)

	for _, diff := range diffs {
		if diff.Type != diffmatchpatch.DiffInsert {
			continue
		}

		if versionPattern.MatchString(diff.Text) {
			return true
		}
	}

	return false
}
