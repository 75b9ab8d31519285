package gitlib

import (
	"os"
	"path/filepath"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// TestingT is the subset of *testing.T the fixture needs. Keeping it an
// interface keeps the testing package out of non-test binaries.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	TempDir() string
	Cleanup(func())
}

// TestRepo is a throwaway git repository for tests, built on a temporary
// directory that the test framework removes.
type TestRepo struct {
	Repo *Repository
	Dir  string

	t     TestingT
	clock time.Time
}

// NewTestRepo initializes an empty repository under t.TempDir().
func NewTestRepo(t TestingT) *TestRepo {
	t.Helper()

	dir := t.TempDir()

	raw, err := git2go.InitRepository(dir, false)
	if err != nil {
		t.Fatalf("init test repository: %v", err)
	}

	repo := &Repository{repo: raw, path: dir}
	t.Cleanup(repo.Free)

	return &TestRepo{
		Repo:  repo,
		Dir:   dir,
		t:     t,
		clock: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WriteFile writes content to a worktree-relative path, creating parent
// directories as needed.
func (tr *TestRepo) WriteFile(rel, content string) {
	tr.t.Helper()

	full := filepath.Join(tr.Dir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		tr.t.Fatalf("mkdir for %s: %v", rel, err)
	}

	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		tr.t.Fatalf("write %s: %v", rel, err)
	}
}

// Stage adds worktree-relative paths to the index.
func (tr *TestRepo) Stage(rels ...string) {
	tr.t.Helper()

	idx, err := tr.Repo.repo.Index()
	if err != nil {
		tr.t.Fatalf("open index: %v", err)
	}
	defer idx.Free()

	for _, rel := range rels {
		if addErr := idx.AddByPath(rel); addErr != nil {
			tr.t.Fatalf("stage %s: %v", rel, addErr)
		}
	}

	if writeErr := idx.Write(); writeErr != nil {
		tr.t.Fatalf("write index: %v", writeErr)
	}
}

// Commit commits the current index on HEAD and returns the commit hash.
// Commit times advance by a day per call so commit years are deterministic.
func (tr *TestRepo) Commit(message string) Hash {
	tr.t.Helper()

	idx, err := tr.Repo.repo.Index()
	if err != nil {
		tr.t.Fatalf("open index: %v", err)
	}
	defer idx.Free()

	treeOid, err := idx.WriteTree()
	if err != nil {
		tr.t.Fatalf("write tree: %v", err)
	}

	tree, err := tr.Repo.repo.LookupTree(treeOid)
	if err != nil {
		tr.t.Fatalf("lookup tree: %v", err)
	}
	defer tree.Free()

	sig := &git2go.Signature{
		Name:  "hookfang test",
		Email: "test@hookfang.invalid",
		When:  tr.clock,
	}
	tr.clock = tr.clock.Add(24 * time.Hour)

	var parents []*git2go.Commit

	if head, headErr := tr.Repo.repo.Head(); headErr == nil {
		parent, lookupErr := tr.Repo.repo.LookupCommit(head.Target())

		head.Free()

		if lookupErr != nil {
			tr.t.Fatalf("lookup parent commit: %v", lookupErr)
		}

		defer parent.Free()

		parents = append(parents, parent)
	}

	oid, err := tr.Repo.repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	if err != nil {
		tr.t.Fatalf("create commit: %v", err)
	}

	return HashFromOid(oid)
}

// CommitFile writes, stages and commits a single file in one step.
func (tr *TestRepo) CommitFile(rel, content, message string) Hash {
	tr.t.Helper()

	tr.WriteFile(rel, content)
	tr.Stage(rel)

	return tr.Commit(message)
}
