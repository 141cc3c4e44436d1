package release

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/google/go-github/v49/github"

	"github.com/zostay/go-dicomweb/tools/pm/changes"
)

// Finish returns the steps that complete a release started with Start.
func (p *Process) Finish() []Step {
	return []Step{
		p.CaptureChangesInfo,
		p.CheckReadyForMerge,
		p.MergePullRequest,
		p.TagRelease,
		p.CreateRelease,
	}
}

// CaptureChangesInfo loads the bullets for the changelog section relevant to
// this release into the process configuration for use when creating the release
// later.
func (p *Process) CaptureChangesInfo(context.Context) error {
	cr, err := changes.ExtractSectionFile(p.Changelog, p.Tag)
	if err != nil {
		return p.failf("unable to get log of changes: %w", err)
	}

	chgs, err := io.ReadAll(cr)
	if err != nil {
		return p.failf("unable to read log of changes: %w", err)
	}

	p.ChangesInfo = string(chgs)
	return nil
}

// CheckReadyForMerge ensures that all the required tests are passing.
func (p *Process) CheckReadyForMerge(ctx context.Context) error {
	bp, _, err := p.gh.Repositories.GetBranchProtection(ctx, p.Owner, p.Project, p.TargetBranch)
	if err != nil {
		return p.failf("unable to get protection of branch %s: %w", p.TargetBranch, err)
	}

	checks := bp.GetRequiredStatusChecks().Checks
	passage := make(map[string]bool, len(checks))
	for _, check := range checks {
		passage[check.Context] = false
	}

	crs, _, err := p.gh.Checks.ListCheckRunsForRef(ctx, p.Owner, p.Project, p.Branch, &github.ListCheckRunsOptions{})
	if err != nil {
		return p.failf("unable to list check runs for branch %s: %w", p.Branch, err)
	}

	for _, run := range crs.CheckRuns {
		passage[run.GetName()] =
			run.GetStatus() == "completed" &&
				run.GetConclusion() == "success"
	}

	for k, v := range passage {
		if !v {
			return p.failf("cannot merge release branch because it has not passed check %q", k)
		}
	}
	return nil
}

// MergePullRequest merges the release pull request into the target branch.
func (p *Process) MergePullRequest(ctx context.Context) error {
	prs, _, err := p.gh.PullRequests.List(ctx, p.Owner, p.Project, &github.PullRequestListOptions{})
	if err != nil {
		return p.failf("unable to list pull requests: %w", err)
	}

	prID := 0
	for _, pr := range prs {
		if pr.Head.GetRef() == p.Branch {
			prID = pr.GetNumber()
			break
		}
	}

	if prID == 0 {
		return p.failf("cannot find pull request for branch %s", p.Branch)
	}

	m, _, err := p.gh.PullRequests.Merge(ctx, p.Owner, p.Project, prID, "Merging release branch.", &github.PullRequestOptions{})
	if err != nil {
		return p.failf("unable to merge pull request %d: %w", prID, err)
	}

	if !m.GetMerged() {
		return p.failf("failed to merge pull request %d", prID)
	}
	return nil
}

// TagRelease creates and pushes a tag for the newly merged release.
func (p *Process) TagRelease(context.Context) error {
	err := p.wc.Checkout(&git.CheckoutOptions{
		Branch: p.TargetBranchRefName(),
	})
	if err != nil {
		return p.failf("unable to switch to %s branch: %w", p.TargetBranch, err)
	}

	err = p.wc.Pull(&git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: p.TargetBranchRefName(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return p.failf("unable to pull the merged %s branch: %w", p.TargetBranch, err)
	}

	headRef, err := p.repo.Head()
	if err != nil {
		return p.failf("unable to get HEAD ref of %s branch: %w", p.TargetBranch, err)
	}

	_, err = p.repo.CreateTag(p.Tag, headRef.Hash(), &git.CreateTagOptions{
		Message: fmt.Sprintf("Release tag for v%s", p.Version.String()),
	})
	if err != nil {
		return p.failf("unable to tag release %s: %w", p.Tag, err)
	}

	p.forCleanup(func() { _ = p.repo.DeleteTag(p.Tag) })

	err = p.repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{p.TagRefSpec()},
	})
	if err != nil {
		return p.failf("unable to push tags to origin: %w", err)
	}

	p.forCleanup(func() {
		_ = p.remote.Push(&git.PushOptions{
			RemoteName: "origin",
			RefSpecs:   []config.RefSpec{p.TagRefSpec()},
			Prune:      true,
		})
	})
	return nil
}

// CreateRelease creates a release on github for the release.
func (p *Process) CreateRelease(ctx context.Context) error {
	releaseName := p.Title()
	_, _, err := p.gh.Repositories.CreateRelease(ctx, p.Owner, p.Project, &github.RepositoryRelease{
		TagName:              github.String(p.Tag),
		Name:                 github.String(releaseName),
		Body:                 github.String(p.ChangesInfo),
		Draft:                github.Bool(false),
		Prerelease:           github.Bool(p.Prerelease()),
		GenerateReleaseNotes: github.Bool(false),
		MakeLatest:           github.String("true"),
	})
	if err != nil {
		return p.failf("failed to create release %q: %w", releaseName, err)
	}
	return nil
}
