package shells

import (
	"strings"

	"github.com/alessio/shellescape"
	"github.com/google/shlex"
)

// Join quotes every part of cmdAndArgs where needed and joins them with
// spaces, for logging commands
func Join(cmdAndArgs []string) string {
	return shellescape.QuoteCommand(cmdAndArgs)
}

// Split splits a command line the way a POSIX shell would, an empty or
// blank string gives no arguments
func Split(cmd string) ([]string, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, nil
	}
	return shlex.Split(cmd)
}
