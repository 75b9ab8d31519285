package gitlib

import (
	"context"
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the git repository at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: workdirOf(repo, path)}, nil
}

// OpenRepositoryAt finds the repository containing path, searching upward
// through parent directories the way git itself does.
func OpenRepositoryAt(path string) (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(path, 0, "")
	if err != nil {
		return nil, fmt.Errorf("discover repository from %s: %w", path, err)
	}

	return &Repository{repo: repo, path: workdirOf(repo, path)}, nil
}

func workdirOf(repo *git2go.Repository, fallback string) string {
	if wd := repo.Workdir(); wd != "" {
		return strings.TrimRight(wd, "/")
	}

	return fallback
}

// Path returns the worktree root.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// HeadCommit returns the commit HEAD points at.
func (r *Repository) HeadCommit(ctx context.Context) (*Commit, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	return r.LookupCommit(ctx, head)
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(_ context.Context, hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupBlob returns the blob with the given hash.
func (r *Repository) LookupBlob(_ context.Context, hash Hash) (*Blob, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup blob: %w", err)
	}

	return &Blob{blob: blob}, nil
}

// LookupTree returns the tree with the given hash.
func (r *Repository) LookupTree(hash Hash) (*Tree, error) {
	tree, err := r.repo.LookupTree(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup tree: %w", err)
	}

	return &Tree{tree: tree, repo: r}, nil
}

// FileAtCommit returns the content of path at the given commit.
func (r *Repository) FileAtCommit(ctx context.Context, hash Hash, path string) ([]byte, error) {
	commit, err := r.LookupCommit(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	return commit.FileContents(ctx, path)
}

// Walk creates a new revision walker.
func (r *Repository) Walk() (*RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	return &RevWalk{walk: walk, repo: r}, nil
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
