// Package release automates cutting a release of this module: a release
// branch and pull request on the way in, then the merge, tag, and GitHub
// release on the way out.
package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/google/go-github/v49/github"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when GITHUB_TOKEN is not set.
var ErrNoToken = errors.New("GITHUB_TOKEN environment variable is missing")

// Process holds the state of a release. Each step returns an error and, on
// failure, undoes the steps before it that registered a cleanup.
type Process struct {
	Config

	gh     *github.Client
	repo   *git.Repository
	remote *git.Remote
	wc     *git.Worktree

	cleanupActions []func()
	addFiles       []string
}

func (p *Process) toAdd(fn string) {
	p.addFiles = append(p.addFiles, fn)
}

func (p *Process) forCleanup(action func()) {
	p.cleanupActions = append(p.cleanupActions, action)
}

// Cleanup runs the registered cleanup actions, newest first.
func (p *Process) Cleanup() {
	for i := len(p.cleanupActions) - 1; i >= 0; i-- {
		p.cleanupActions[i]()
	}
	p.cleanupActions = nil
}

// failf cleans up and returns the formatted error.
func (p *Process) failf(f string, args ...any) error {
	p.Cleanup()
	return fmt.Errorf(f, args...)
}

// Step is one stage of a release.
type Step func(ctx context.Context) error

// Run runs each step in order, stopping at the first failure.
func (p *Process) Run(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return fmt.Errorf("cancelling release: %w", err)
		}
	}
	return nil
}

func initializeProcess(ctx context.Context, cfg *Config) (*Process, error) {
	p := &Process{Config: *cfg}

	if err := p.setupGithubClient(ctx); err != nil {
		return nil, err
	}

	if err := p.setupGitRepo(); err != nil {
		return nil, err
	}

	return p, nil
}

// NewProcess begins the release of version v.
func NewProcess(ctx context.Context, v string, cfg *Config) (*Process, error) {
	p, err := initializeProcess(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := p.SetVersion(v, time.Now()); err != nil {
		return nil, err
	}

	return p, nil
}

// NewProcessContinuation picks up a release from the release branch checked
// out in the working copy.
func NewProcessContinuation(ctx context.Context, cfg *Config) (*Process, error) {
	p, err := initializeProcess(ctx, cfg)
	if err != nil {
		return nil, err
	}

	headRef, err := p.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("unable to find HEAD: %w", err)
	}

	v, ok := VersionFromBranch(headRef.Name())
	if !ok {
		return nil, fmt.Errorf("you must be on the release branch to finish the process, not %s", headRef.Name())
	}

	if err := p.SetVersion(v, time.Now()); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Process) setupGithubClient(ctx context.Context) error {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return ErrNoToken
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	p.gh = github.NewClient(tc)

	return nil
}

func (p *Process) setupGitRepo() error {
	l, err := git.PlainOpen(".")
	if err != nil {
		return fmt.Errorf("unable to open git repository at .: %w", err)
	}

	p.repo = l

	r, err := p.repo.Remote("origin")
	if err != nil {
		return fmt.Errorf("unable to connect to remote origin: %w", err)
	}

	p.remote = r

	w, err := p.repo.Worktree()
	if err != nil {
		return fmt.Errorf("unable to examine the working copy: %w", err)
	}

	p.wc = w
	return nil
}
