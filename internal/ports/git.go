package ports

import (
	"context"
	"time"
)

// Commit is the subset of a git commit the importer needs.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Message string
	When    time.Time
}

// CommitFilter narrows a commit history walk.
type CommitFilter struct {
	// Author matches the author email or name, case-insensitively. Empty matches all.
	Author string
	// Since drops commits older than this instant when non-zero.
	Since time.Time
}

// CommitHistory reads commit history from a repository.
// This is a driven port (implemented by adapters).
type CommitHistory interface {
	// Commits walks history from HEAD and returns matching commits.
	Commits(ctx context.Context, repoPath string, filter CommitFilter) ([]Commit, error)

	// IsRepository reports whether path is inside a git work tree.
	IsRepository(path string) bool
}
