package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// EntryByPath returns the tree entry at the given path.
func (t *Tree) EntryByPath(path string) (*TreeEntry, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("entry by path: %w", err)
	}

	return &TreeEntry{entry: entry}, nil
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// Native returns the underlying libgit2 tree.
func (t *Tree) Native() *git2go.Tree {
	return t.tree
}

// TreeEntry wraps a libgit2 tree entry.
type TreeEntry struct {
	entry *git2go.TreeEntry
}

// Name returns the entry name.
func (e *TreeEntry) Name() string {
	return e.entry.Name
}

// Hash returns the entry object hash.
func (e *TreeEntry) Hash() Hash {
	return HashFromOid(e.entry.Id)
}

// IsBlob reports whether the entry is a blob.
func (e *TreeEntry) IsBlob() bool {
	return e.entry.Type == git2go.ObjectBlob
}
