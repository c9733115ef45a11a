package utils

import (
	"fmt"
	"io/fs"
)

// FormatPermissions returns the three-digit octal representation of the
// permission bits of the provided mode, matching the classic ls notation.
func FormatPermissions(mode fs.FileMode) string {
	return fmt.Sprintf("%03o", mode.Perm())
}
