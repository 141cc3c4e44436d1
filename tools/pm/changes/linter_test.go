package changes_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-dicomweb/tools/pm/changes"
)

const goodLog = `WIP  TBD

 * Verify Content-Length on decoded parts.

v0.2.0  2026-09-01

 * Add the Walk method.
   It drains each part after the walker returns.
 * Add NewReaderFromContentType.

v0.1.0  2026-08-15

 * Initial release.
`

func lint(log string, mode changes.CheckMode) changes.Failures {
	err := changes.NewLinter(strings.NewReader(log), mode).Check()

	var cerr *changes.Error
	if errors.As(err, &cerr) {
		return cerr.Failures
	}
	return nil
}

func TestLinter_Good(t *testing.T) {
	t.Parallel()

	assert.Empty(t, lint(goodLog, changes.CheckStandard))
	assert.Empty(t, lint(goodLog, changes.CheckPreRelease))

	released := strings.Replace(goodLog, "WIP  TBD", "v0.3.0  2026-10-19", 1)
	assert.Empty(t, lint(released, changes.CheckRelease))
	assert.Empty(t, lint(released, changes.CheckStandard))
}

func TestLinter_Modes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, changes.Failures{{1, "found WIP line during release"}}, lint(goodLog, changes.CheckRelease))

	released := strings.Replace(goodLog, "WIP  TBD", "v0.3.0  2026-10-19", 1)
	assert.Equal(t, changes.Failures{{1, "WIP not found during pre-release check"}}, lint(released, changes.CheckPreRelease))
}

func TestLinter_Bad(t *testing.T) {
	t.Parallel()

	log := `v0.1.0  2026-08-15
 * Missing blank.


v0.2.0  2026-09-01

   Continues nothing.
	tabbed
 * Bullet.
WIP
`

	fs := lint(log, changes.CheckStandard)
	assert.Equal(t, changes.Failures{
		{2, "missing blank line before log bullet"},
		{4, "consecutive blank lines"},
		{5, "version error 0.2.0 >= 0.1.0 from line 1"},
		{5, "date error 2026-09-01 > 2026-08-15 from line 1"},
		{7, "log line continuation has no bullet to continue"},
		{8, "badly formatted line"},
		{10, "WIP found after line 1"},
	}, fs)

	err := changes.NewLinter(strings.NewReader(log), changes.CheckStandard).Check()
	assert.Contains(t, err.Error(), " * Line 2: missing blank line before log bullet")
}

func TestLinter_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, changes.Failures{{1, "change log is empty"}}, lint("", changes.CheckStandard))
}

func TestExtractSection(t *testing.T) {
	t.Parallel()

	r, err := changes.ExtractSection(strings.NewReader(goodLog), "v0.2.0")
	require.NoError(t, err)

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, " * Add the Walk method.\n   It drains each part after the walker returns.\n * Add NewReaderFromContentType.\n", string(b))

	_, err = changes.ExtractSection(strings.NewReader(goodLog), "v9.9.9")
	assert.Error(t, err)
}

func TestStamp(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	err := changes.Stamp(strings.NewReader(goodLog), buf, "0.3.0", "2026-10-19")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "v0.3.0  2026-10-19\n\n * Verify"))
	assert.Empty(t, lint(buf.String(), changes.CheckRelease))

	err = changes.Stamp(strings.NewReader(buf.String()), io.Discard, "0.4.0", "2026-10-20")
	assert.Error(t, err)
}
