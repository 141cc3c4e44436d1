package release_test

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-dicomweb/tools/pm/release"
)

func TestConfig_SetVersion(t *testing.T) {
	t.Parallel()

	today := time.Date(2023, time.February, 3, 12, 0, 0, 0, time.UTC)

	cfg := release.DefaultConfig()
	require.NoError(t, cfg.SetVersion("v1.2.0", today))

	assert.Equal(t, "1.2.0", cfg.Version.String())
	assert.Equal(t, "release-v1.2.0", cfg.Branch)
	assert.Equal(t, "v1.2.0", cfg.Tag)
	assert.Equal(t, "2023-02-03", cfg.Today)
	assert.False(t, cfg.Prerelease())

	assert.Equal(t, "Release v1.2.0", cfg.Title())
	assert.Equal(t, "Pull request to release v1.2.0 of go-dicomweb.", cfg.PullRequestBody())

	assert.Equal(t, plumbing.ReferenceName("refs/heads/release-v1.2.0"), cfg.BranchRefName())
	assert.Equal(t, plumbing.ReferenceName("refs/heads/master"), cfg.TargetBranchRefName())
	assert.Equal(t, config.RefSpec("refs/heads/release-v1.2.0:refs/heads/release-v1.2.0"), cfg.BranchRefSpec())
	assert.Equal(t, config.RefSpec("refs/tags/v1.2.0:refs/tags/v1.2.0"), cfg.TagRefSpec())
	assert.NoError(t, cfg.TagRefSpec().Validate())

	require.NoError(t, cfg.SetVersion("2.0.0-rc.1", today))
	assert.Equal(t, "v2.0.0-rc.1", cfg.Tag)
	assert.True(t, cfg.Prerelease())

	err := cfg.SetVersion("one point two", today)
	assert.Error(t, err)
	assert.Equal(t, "v2.0.0-rc.1", cfg.Tag, "a bad version leaves the config alone")
}

func TestVersionFromBranch(t *testing.T) {
	t.Parallel()

	v, ok := release.VersionFromBranch("refs/heads/release-v1.2.0")
	assert.True(t, ok)
	assert.Equal(t, "1.2.0", v)

	for _, ref := range []plumbing.ReferenceName{
		"refs/heads/master",
		"refs/heads/release-v",
		"refs/tags/release-v1.2.0",
		"HEAD",
	} {
		_, ok := release.VersionFromBranch(ref)
		assert.False(t, ok, ref)
	}
}
