package release

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// branchPrefix starts the name of every release branch.
const branchPrefix = "release-v"

// Config describes the project being released and the release in progress.
type Config struct {
	// Version is the semantic version of the release being processed.
	Version *semver.Version

	// Branch is the name of the release branch.
	Branch string

	// Tag is the name of the final release tag.
	Tag string

	// Today is the YYYY-MM-DD date stamped on the change log.
	Today string

	// Changelog is the name of the file holding the change log.
	Changelog string

	// Owner and Project name the repository on github.
	Owner   string
	Project string

	// TargetBranch is the branch we are merging into (usually master).
	TargetBranch string

	// ChangesInfo is the bullets in the change log to put into the release
	// body.
	ChangesInfo string
}

// DefaultConfig returns the release configuration of go-dicomweb. No release
// is in progress until SetVersion is called.
func DefaultConfig() Config {
	return Config{
		Changelog:    "Changes.md",
		Owner:        "zostay",
		Project:      "go-dicomweb",
		TargetBranch: "master",
	}
}

// SetVersion parses v, with or without a leading "v", and fills in the
// release branch, the tag, and the date of the release.
func (c *Config) SetVersion(v string, today time.Time) error {
	version, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return fmt.Errorf("bad release version %q: %w", v, err)
	}

	c.Version = version
	c.Branch = branchPrefix + version.String()
	c.Tag = "v" + version.String()
	c.Today = today.Format("2006-01-02")
	return nil
}

// VersionFromBranch returns the version named by a release branch reference
// such as refs/heads/release-v1.2.0. It returns false for any other reference.
func VersionFromBranch(ref plumbing.ReferenceName) (string, bool) {
	if !ref.IsBranch() {
		return "", false
	}

	name := ref.Short()
	if !strings.HasPrefix(name, branchPrefix) || len(name) == len(branchPrefix) {
		return "", false
	}
	return name[len(branchPrefix):], true
}

// Title names both the pull request and the github release.
func (c *Config) Title() string {
	return "Release " + c.Tag
}

// PullRequestBody is the description of the release pull request.
func (c *Config) PullRequestBody() string {
	return fmt.Sprintf("Pull request to release %s of %s.", c.Tag, c.Project)
}

// Prerelease reports whether the version carries a pre-release suffix, as in
// 1.0.0-rc.1.
func (c *Config) Prerelease() bool {
	return c.Version != nil && c.Version.PreRelease != ""
}

func ref(t, n string) plumbing.ReferenceName {
	return plumbing.ReferenceName(path.Join("refs", t, n))
}

// BranchRefName is the full reference of the release branch.
func (c *Config) BranchRefName() plumbing.ReferenceName {
	return ref("heads", c.Branch)
}

// TargetBranchRefName is the full reference of the branch merged into.
func (c *Config) TargetBranchRefName() plumbing.ReferenceName {
	return ref("heads", c.TargetBranch)
}

func refSpec(r plumbing.ReferenceName) config.RefSpec {
	return config.RefSpec(r.String() + ":" + r.String())
}

// BranchRefSpec pushes the release branch to the remote.
func (c *Config) BranchRefSpec() config.RefSpec {
	return refSpec(c.BranchRefName())
}

// TagRefSpec pushes or deletes the release tag on the remote.
func (c *Config) TagRefSpec() config.RefSpec {
	return refSpec(ref("tags", c.Tag))
}
