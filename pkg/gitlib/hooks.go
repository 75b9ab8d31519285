package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Upstream resolves the tip of the upstream branch of HEAD. The second
// return is false when HEAD is unborn, detached, or the branch has no
// configured upstream.
func (r *Repository) Upstream() (Hash, bool, error) {
	ref, err := r.repo.Head()
	if err != nil {
		// Unborn HEAD.
		return Hash{}, false, nil
	}
	defer ref.Free()

	branch := ref.Branch()
	if branch == nil {
		return Hash{}, false, nil
	}

	upstream, err := branch.Upstream()
	if err != nil {
		return Hash{}, false, nil
	}
	defer upstream.Free()

	return HashFromOid(upstream.Target()), true, nil
}

// UpstreamTip resolves the diff base for pre-commit checks: the tip of the
// upstream branch of HEAD when one is configured, otherwise the first parent
// of HEAD. The second return is false when neither exists, which happens in
// a repository with a single commit and no upstream.
func (r *Repository) UpstreamTip(ctx context.Context) (Hash, bool, error) {
	if tip, ok, err := r.Upstream(); err != nil || ok {
		return tip, ok, err
	}

	ref, err := r.repo.Head()
	if err != nil {
		// Unborn HEAD: nothing to diff against.
		return Hash{}, false, nil
	}
	defer ref.Free()

	// No upstream configured or detached HEAD: compare against HEAD~.
	head, err := r.LookupCommit(ctx, HashFromOid(ref.Target()))
	if err != nil {
		return Hash{}, false, err
	}
	defer head.Free()

	if head.NumParents() == 0 {
		return Hash{}, false, nil
	}

	return head.ParentHash(0), true, nil
}

// StagedFiles returns the paths staged in the index relative to HEAD,
// as worktree-relative paths.
func (r *Repository) StagedFiles() ([]string, error) {
	list, err := r.repo.StatusList(&git2go.StatusOptions{
		Show: git2go.StatusShowIndexOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list staged files: %w", err)
	}
	defer list.Free()

	count, err := list.EntryCount()
	if err != nil {
		return nil, fmt.Errorf("count staged files: %w", err)
	}

	files := make([]string, 0, count)

	for i := range count {
		entry, entryErr := list.ByIndex(i)
		if entryErr != nil {
			return nil, fmt.Errorf("staged entry %d: %w", i, entryErr)
		}

		files = append(files, entry.HeadToIndex.NewFile.Path)
	}

	return files, nil
}

// IsStaged reports whether the worktree-relative path is staged in the index.
func (r *Repository) IsStaged(path string) (bool, error) {
	files, err := r.StagedFiles()
	if err != nil {
		return false, err
	}

	for _, f := range files {
		if f == path {
			return true, nil
		}
	}

	return false, nil
}

// LastModifiedYear returns the committer year of the most recent commit that
// changed the worktree-relative path. The second return is false when the
// path has no history, which covers untracked files and empty repositories.
func (r *Repository) LastModifiedYear(ctx context.Context, path string) (int, bool, error) {
	walk, err := r.Walk()
	if err != nil {
		return 0, false, err
	}
	defer walk.Free()

	if pushErr := walk.PushHead(); pushErr != nil {
		// Unborn HEAD: no history at all.
		return 0, false, nil
	}

	year := 0
	found := false

	iterErr := walk.Iterate(func(commit *Commit) bool {
		defer commit.Free()

		if ctx.Err() != nil {
			return false
		}

		if commitTouches(commit.Native(), path) {
			year = commit.Committer().When.Year()
			found = true

			return false
		}

		return true
	})
	if iterErr != nil {
		return 0, false, iterErr
	}

	return year, found, nil
}

// commitTouches reports whether the commit changed path relative to every
// parent: the entry exists with a blob id no parent shares, or the commit is
// a root commit that introduces it.
func commitTouches(commit *git2go.Commit, path string) bool {
	id := entryID(commit, path)
	if id == nil {
		return false
	}

	if commit.ParentCount() == 0 {
		return true
	}

	for i := range commit.ParentCount() {
		parent := commit.Parent(i)
		if parent == nil {
			continue
		}

		parentID := entryID(parent, path)

		parent.Free()

		if parentID != nil && parentID.Equal(id) {
			return false
		}
	}

	return true
}

// entryID returns the object id of path in the commit tree, or nil when the
// path is absent.
func entryID(commit *git2go.Commit, path string) *git2go.Oid {
	tree, err := commit.Tree()
	if err != nil {
		return nil
	}
	defer tree.Free()

	entry, err := tree.EntryByPath(path)
	if err != nil {
		return nil
	}

	return entry.Id
}
