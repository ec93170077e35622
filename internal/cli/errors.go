package cli

import "fmt"

type missingFlagError struct {
	cmd  string
	flag string
}

func (e missingFlagError) Error() string {
	return fmt.Sprintf("%s: missing --%s", e.cmd, e.flag)
}

func errMissingFlag(cmd, flag string) error {
	return missingFlagError{cmd: cmd, flag: flag}
}
