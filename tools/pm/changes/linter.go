// Package changes checks and reads the Changes.md file of this project. The
// file lists releases newest first:
//
//	WIP  TBD
//
//	 * Describe the unreleased change.
//
//	v0.1.0  2026-10-19
//
//	 * Initial release.
//	   Bullets may continue on lines indented three spaces.
package changes

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
)

// CheckMode selects how strict the Linter is about the WIP heading.
type CheckMode int

const (
	// CheckStandard allows, but does not require, a WIP heading on line 1.
	CheckStandard CheckMode = iota

	// CheckPreRelease requires a WIP heading on line 1. This is the state of
	// the file just before a release starts.
	CheckPreRelease

	// CheckRelease forbids any WIP heading. This is the state of the file once
	// the WIP heading has been replaced by the version being released.
	CheckRelease
)

// Linter checks a change log for formatting mistakes.
type Linter struct {
	r    io.Reader
	mode CheckMode
}

// Failure is a single problem found on a line.
type Failure struct {
	Line    int
	Message string
}

// Failures is every problem found by a Check.
type Failures []Failure

func (fs Failures) String() string {
	lines := make([]string, len(fs))
	for i, f := range fs {
		lines[i] = fmt.Sprintf(" * Line %d: %s", f.Line, f.Message)
	}
	return strings.Join(lines, "\n")
}

// Error is returned by Check when any line fails.
type Error struct {
	Failures
}

func (e *Error) Error() string {
	return fmt.Sprintf("change log linter check failed:\n%s", e.Failures.String())
}

// NewLinter returns a Linter reading the change log from r.
func NewLinter(r io.Reader, mode CheckMode) *Linter {
	return &Linter{r, mode}
}

var (
	versionHeading      = regexp.MustCompile(`^v(\d\S+) {2}(\d{4}-\d\d-\d\d)$`)
	logLineStart        = regexp.MustCompile(`^ \* \S`)
	logLineContinuation = regexp.MustCompile(`^ {3}\S`)
	whitespaceLine      = regexp.MustCompile(`^\s+$`)
)

func isWIP(line string) bool {
	return line == "WIP" || line == "WIP  TBD"
}

type lineKind int

const (
	kindNone lineKind = iota
	kindHeading
	kindBlank
	kindBullet
)

type checker struct {
	mode CheckMode

	previousVersion *semver.Version
	previousDate    string
	headingLine     int
	previous        lineKind

	Failures
}

func (c *checker) fail(n int, f string, args ...any) {
	c.Failures = append(c.Failures, Failure{n, fmt.Sprintf(f, args...)})
}

// Check reads the whole change log and returns an *Error listing every
// problem, or nil.
func (l *Linter) Check() error {
	c := &checker{mode: l.mode}

	s := bufio.NewScanner(l.r)
	n := 0
	for s.Scan() {
		n++
		c.previous = c.line(n, s.Text())
	}

	if err := s.Err(); err != nil {
		return err
	}

	if n == 0 {
		c.fail(1, "change log is empty")
	}

	if len(c.Failures) > 0 {
		return &Error{c.Failures}
	}
	return nil
}

// line checks one line and returns what kind of line it was.
func (c *checker) line(n int, line string) lineKind {
	if isWIP(line) {
		if n > 1 {
			c.fail(n, "WIP found after line 1")
		}
		if c.mode == CheckRelease {
			c.fail(n, "found WIP line during release")
		}
		c.headingLine = n
		return kindHeading
	}

	if c.mode == CheckPreRelease && n == 1 {
		c.fail(n, "WIP not found during pre-release check")
	}

	switch {
	case versionHeading.MatchString(line):
		c.heading(n, line)
		return kindHeading

	case logLineStart.MatchString(line):
		switch {
		case c.headingLine == 0:
			c.fail(n, "log bullet before first version heading or WIP")
		case c.previous == kindHeading:
			c.fail(n, "missing blank line before log bullet")
		case c.previous == kindBlank && n > c.headingLine+2:
			c.fail(n, "extra blank line before log bullet")
		}
		return kindBullet

	case logLineContinuation.MatchString(line):
		if c.previous != kindBullet {
			c.fail(n, "log line continuation has no bullet to continue")
			return kindNone
		}
		return kindBullet

	case line == "":
		if c.previous == kindBlank {
			c.fail(n, "consecutive blank lines")
		}
		return kindBlank

	case whitespaceLine.MatchString(line):
		c.fail(n, "line looks blank, but has spaces in it")
		return kindNone
	}

	c.fail(n, "badly formatted line")
	return kindNone
}

// heading checks that versions and dates descend down the file.
func (c *checker) heading(n int, line string) {
	m := versionHeading.FindStringSubmatch(line)
	ver, date := m[1], m[2]

	if n != 1 && c.previous != kindBlank {
		c.fail(n, "version heading line missing blank line before it")
	}

	version, err := semver.NewVersion(ver)
	if err != nil {
		c.fail(n, "unable to parse version number in heading: %v", err)
		c.headingLine = n
		return
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.fail(n, "unable to parse date in heading: %v", err)
	}

	if c.previousVersion != nil && !version.LessThan(*c.previousVersion) {
		c.fail(n, "version error %s >= %s from line %d", version, c.previousVersion, c.headingLine)
	}

	if c.previousDate != "" && c.previousDate < date {
		c.fail(n, "date error %s > %s from line %d", date, c.previousDate, c.headingLine)
	}

	c.previousVersion = version
	c.previousDate = date
	c.headingLine = n
}
