package changes

import (
	"bufio"
	"fmt"
	"io"
)

// Stamp copies the change log from r to w, replacing the WIP heading with the
// heading of a release of version v on the given date. It returns an error if
// there is no WIP heading to replace.
func Stamp(r io.Reader, w io.Writer, v, date string) error {
	sc := bufio.NewScanner(r)
	stamped := false
	for sc.Scan() {
		line := sc.Text()
		if isWIP(line) && !stamped {
			line = fmt.Sprintf("v%s  %s", v, date)
			stamped = true
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return err
	}

	if !stamped {
		return fmt.Errorf("no WIP heading found to stamp with v%s", v)
	}
	return nil
}
