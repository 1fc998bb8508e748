// Package git reads commit history using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// ErrNoRepository is returned when no work tree is found at or above a path.
var ErrNoRepository = errors.New("no .git directory found")

// History implements the ports.CommitHistory interface using go-git.
type History struct{}

// NewHistory creates a new commit history reader.
func NewHistory() *History {
	return &History{}
}

// Ensure History implements ports.CommitHistory.
var _ ports.CommitHistory = (*History)(nil)

// Commits walks history from HEAD of the repository containing repoPath.
// An empty repoPath means the working directory.
func (h *History) Commits(ctx context.Context, repoPath string, filter ports.CommitFilter) ([]ports.Commit, error) {
	repo, err := open(repoPath)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Freshly initialised repository without commits.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	opts := &git.LogOptions{From: head.Hash()}
	if !filter.Since.IsZero() {
		since := filter.Since
		opts.Since = &since
	}

	iter, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	author := strings.ToLower(strings.TrimSpace(filter.Author))
	var commits []ports.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if author != "" && !matchesAuthor(c.Author, author) {
			return nil
		}
		commits = append(commits, ports.Commit{
			Hash:    c.Hash.String(),
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Message: strings.Split(c.Message, "\n")[0],
			When:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits: %w", err)
	}

	return commits, nil
}

// IsRepository reports whether path is inside a git work tree.
func (h *History) IsRepository(path string) bool {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return false
		}
		path = cwd
	}
	_, err := findGitRepo(path)
	return err == nil
}

func matchesAuthor(sig object.Signature, author string) bool {
	return strings.ToLower(sig.Email) == author ||
		strings.Contains(strings.ToLower(sig.Name), author)
}

func open(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	root, err := findGitRepo(path)
	if err != nil {
		return nil, fmt.Errorf("git repository not found at %s: %w", path, err)
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return repo, nil
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// A worktree checkout has a .git file pointing at the real gitdir.
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", ErrNoRepository
}
