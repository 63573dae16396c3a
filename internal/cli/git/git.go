// --- START OF FINAL REVISED FILE internal/cli/git/git.go ---
package git

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

// ErrGitOperation wraps failures of the underlying repository access.
var ErrGitOperation = errors.New("git operation failed")

// GoGitClient reads snapshot provenance from the enclosing repository using go-git.
type GoGitClient struct {
	logger *slog.Logger
}

var _ auditor.GitClient = (*GoGitClient)(nil)

// NewGoGitClient creates a new GoGitClient.
func NewGoGitClient(loggerHandler slog.Handler) *GoGitClient {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "gitClient"), slog.String("backend", "go-git"))
	return &GoGitClient{logger: logger}
}

func (c *GoGitClient) openRepo(repoPath string) (*git.Repository, error) {
	absRepoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get absolute path for repository '%s': %w", ErrGitOperation, repoPath, err)
	}
	repo, err := git.PlainOpenWithOptions(absRepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: repository not found at or above path '%s': %w", ErrGitOperation, absRepoPath, err)
		}
		return nil, fmt.Errorf("%w: failed to open repository at '%s': %w", ErrGitOperation, absRepoPath, err)
	}
	return repo, nil
}

// GetFileMetadata returns the last commit touching filePath.
// Provenance is optional: a missing repository, an untracked file or a file
// outside the worktree yield an empty map and no error.
func (c *GoGitClient) GetFileMetadata(repoPath, filePath string) (map[string]string, error) {
	logArgs := []any{slog.String("repo", repoPath), slog.String("file", filePath)}
	c.logger.Debug("Getting file metadata", logArgs...)

	repo, err := c.openRepo(repoPath)
	if err != nil {
		c.logger.Debug("Skipping git metadata", append(logArgs, slog.String("error", err.Error()))...)
		return map[string]string{}, nil
	}
	worktree, err := repo.Worktree()
	if err != nil {
		c.logger.Debug("Repository has no worktree, skipping git metadata", append(logArgs, slog.String("error", err.Error()))...)
		return map[string]string{}, nil
	}
	absRepoRoot := worktree.Filesystem.Root()

	absFilePath := filePath
	if !filepath.IsAbs(absFilePath) {
		absFilePath = filepath.Join(absRepoRoot, filePath)
	}
	relPath, err := filepath.Rel(absRepoRoot, absFilePath)
	if err != nil || strings.HasPrefix(filepath.Clean(relPath), "..") {
		c.logger.Debug("File path is outside the repository worktree, skipping git metadata", logArgs...)
		return map[string]string{}, nil
	}
	relPath = filepath.ToSlash(relPath)

	logIter, err := repo.Log(&git.LogOptions{
		FileName: &relPath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			c.logger.Debug("Repository has no commits yet", logArgs...)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read log for '%s': %w", ErrGitOperation, relPath, err)
	}
	defer logIter.Close()

	commit, err := logIter.Next()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, storer.ErrStop) {
			c.logger.Debug("No commit history found for file", logArgs...)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: error iterating log for '%s': %w", ErrGitOperation, relPath, err)
	}

	return map[string]string{
		"commit":      commit.Hash.String(),
		"author":      commit.Author.Name,
		"authorEmail": commit.Author.Email,
		"dateISO":     commit.Author.When.UTC().Format(time.RFC3339),
		"dateUnix":    fmt.Sprintf("%d", commit.Author.When.Unix()),
	}, nil
}

// --- END OF FINAL REVISED FILE internal/cli/git/git.go ---
