package changes

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// ExtractSection returns the bullets written below the change log heading for
// the version vstring (e.g., "v1.2.0"). The section ends at the next version
// heading. An error is returned if the heading is not found.
func ExtractSection(r io.Reader, vstring string) (io.Reader, error) {
	var (
		vprefix = vstring + "  "
		sc      = bufio.NewScanner(r)
		started = false
		buf     = &bytes.Buffer{}
	)

	for sc.Scan() {
		line := sc.Text()
		if !started {
			started = strings.HasPrefix(line, vprefix)
			continue
		}

		if versionHeading.MatchString(line) || isWIP(line) {
			break
		}

		if line == "" {
			continue
		}

		buf.WriteString(line)
		buf.WriteRune('\n')
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !started {
		return nil, fmt.Errorf("a change log section for version %s was not found", vstring)
	}

	return buf, nil
}

// ExtractSectionFile is ExtractSection for the named change log file.
func ExtractSectionFile(fn string, vstring string) (io.Reader, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ExtractSection(f, vstring)
}
