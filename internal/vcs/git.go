package vcs

import (
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/shintoio/ama/pkg/logger"
)

// GitInitializer implements Initializer with go-git; no git binary is needed.
type GitInitializer struct {
	// Branch receives the initial commit. Empty means "master".
	Branch string

	repo *git.Repository
	now  func() time.Time
}

// NewGitInitializer returns an initializer committing onto branch.
func NewGitInitializer(branch string) *GitInitializer {
	return &GitInitializer{Branch: branch, now: time.Now}
}

// Init creates a repository at path, or opens the one already there.
func (g *GitInitializer) Init(path string) error {
	branch := g.Branch
	if branch == "" {
		branch = "master"
	}
	repo, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		logger.Debug("Reusing existing git repository", logger.String("path", path))
		repo, err = git.PlainOpen(path)
	}
	if err != nil {
		return fmt.Errorf("initializing git repository at %s: %w", path, err)
	}
	g.repo = repo
	return nil
}

// StageAll is the equivalent of `git add -A`.
func (g *GitInitializer) StageAll() error {
	wt, err := g.worktree()
	if err != nil {
		return err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging files: %w", err)
	}
	return nil
}

// Commit records the staged tree. Re-running init on an unchanged repository
// still yields a commit, so the history shows every initialization.
func (g *GitInitializer) Commit(author User, message string) error {
	wt, err := g.worktree()
	if err != nil {
		return err
	}
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	sig := &object.Signature{Name: author.Name, Email: author.Email, When: now()}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("creating commit: %w", err)
	}
	logger.Debug("Created commit", logger.String("hash", hash.String()), logger.String("author", author.Name))
	return nil
}

func (g *GitInitializer) worktree() (*git.Worktree, error) {
	if g.repo == nil {
		return nil, errors.New("git repository not initialized; call Init first")
	}
	wt, err := g.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	return wt, nil
}
