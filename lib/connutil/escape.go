package connutil

import (
	"fmt"
	"strconv"
)

// Unescape interprets Go string escapes such as \r, \n and \x04 so that
// terminators can be given on the command line.
func Unescape(s string) (string, error) {
	u, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return "", fmt.Errorf("invalid escape sequence in %q", s)
	}
	return u, nil
}
