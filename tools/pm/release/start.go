package release

import (
	"context"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/google/go-github/v49/github"

	"github.com/zostay/go-dicomweb/tools/pm/changes"
)

// Start returns the steps that open a release.
func (p *Process) Start() []Step {
	return []Step{
		p.CheckGitCleanliness,
		p.LintChangelog,
		p.MakeReleaseBranch,
		p.FixupChangelog,
		p.AddAndCommit,
		p.PushReleaseBranch,
		p.CreateGithubPullRequest,
	}
}

// CheckGitCleanliness requires a clean working copy of the target branch that
// matches the remote.
func (p *Process) CheckGitCleanliness(context.Context) error {
	headRef, err := p.repo.Head()
	if err != nil {
		return p.failf("unable to find HEAD: %w", err)
	}

	if headRef.Name() != p.TargetBranchRefName() {
		return p.failf("you must checkout %s to release", p.TargetBranch)
	}

	remoteRefs, err := p.remote.List(&git.ListOptions{})
	if err != nil {
		return p.failf("unable to list remote git references: %w", err)
	}

	var targetRef *plumbing.Reference
	for _, ref := range remoteRefs {
		if ref.Name() == p.TargetBranchRefName() {
			targetRef = ref
			break
		}
	}

	if targetRef == nil {
		return p.failf("remote has no %s branch", p.TargetBranch)
	}

	if headRef.Hash() != targetRef.Hash() {
		return p.failf("local copy differs from remote, you need to push or pull")
	}

	stat, err := p.wc.Status()
	if err != nil {
		return p.failf("unable to check working copy status: %w", err)
	}

	if !stat.IsClean() {
		return p.failf("your working copy is dirty")
	}

	return nil
}

// LintChangelog requires the change log to be ready for release.
func (p *Process) LintChangelog(context.Context) error {
	changelog, err := os.Open(p.Changelog)
	if err != nil {
		return p.failf("unable to open %s: %w", p.Changelog, err)
	}
	defer func() { _ = changelog.Close() }()

	if err := changes.NewLinter(changelog, changes.CheckPreRelease).Check(); err != nil {
		return p.failf("%w", err)
	}
	return nil
}

func (p *Process) MakeReleaseBranch(context.Context) error {
	err := p.repo.CreateBranch(&config.Branch{
		Name:   p.Branch,
		Remote: "origin",
		Merge:  p.BranchRefName(),
	})
	if err != nil {
		return p.failf("unable to create release branch %s: %w", p.Branch, err)
	}

	p.forCleanup(func() { _ = p.repo.DeleteBranch(p.Branch) })

	err = p.wc.Checkout(&git.CheckoutOptions{
		Branch: p.BranchRefName(),
		Create: true,
	})
	if err != nil {
		return p.failf("unable to switch to %s: %w", p.Branch, err)
	}

	p.forCleanup(func() {
		_ = p.wc.Checkout(&git.CheckoutOptions{Branch: p.TargetBranchRefName()})
		_ = p.repo.Storer.RemoveReference(p.BranchRefName())
	})

	return nil
}

// FixupChangelog replaces the WIP heading with the release heading.
func (p *Process) FixupChangelog(context.Context) error {
	r, err := os.Open(p.Changelog)
	if err != nil {
		return p.failf("unable to open %s: %w", p.Changelog, err)
	}
	defer func() { _ = r.Close() }()

	newChangelog := p.Changelog + ".new"
	w, err := os.Create(newChangelog)
	if err != nil {
		return p.failf("unable to create %s: %w", newChangelog, err)
	}

	p.forCleanup(func() { _ = os.Remove(newChangelog) })

	if err := changes.Stamp(r, w, p.Version.String(), p.Today); err != nil {
		_ = w.Close()
		return p.failf("unable to stamp %s: %w", p.Changelog, err)
	}

	if err := w.Close(); err != nil {
		return p.failf("unable to close %s: %w", newChangelog, err)
	}

	if err := os.Rename(newChangelog, p.Changelog); err != nil {
		return p.failf("unable to overwrite %s with %s: %w", p.Changelog, newChangelog, err)
	}

	p.toAdd(p.Changelog)
	return nil
}

func (p *Process) AddAndCommit(context.Context) error {
	for _, fn := range p.addFiles {
		if _, err := p.wc.Add(fn); err != nil {
			return p.failf("error adding file %s to git: %w", fn, err)
		}
	}

	_, err := p.wc.Commit("releng: v"+p.Version.String(), &git.CommitOptions{})
	if err != nil {
		return p.failf("error committing changes to git: %w", err)
	}
	return nil
}

func (p *Process) PushReleaseBranch(context.Context) error {
	err := p.repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{p.BranchRefSpec()},
	})
	if err != nil {
		return p.failf("error pushing changes to github: %w", err)
	}
	return nil
}

func (p *Process) CreateGithubPullRequest(ctx context.Context) error {
	_, _, err := p.gh.PullRequests.Create(ctx, p.Owner, p.Project, &github.NewPullRequest{
		Title: github.String(p.Title()),
		Head:  github.String(p.Branch),
		Base:  github.String(p.TargetBranch),
		Body:  github.String(p.PullRequestBody()),
	})
	if err != nil {
		return p.failf("unable to create pull request: %w", err)
	}
	return nil
}
