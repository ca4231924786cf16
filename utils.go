package kvfront

import (
	"unicode/utf8"
)

// MaxNameBytes is the longest entry name accepted, in bytes.
const MaxNameBytes = 512

// IsValidName validates that a string can be used as an entry name.
// It checks that the name:
//   - is not empty, "." or ".."
//   - is at most MaxNameBytes long
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Slashes and spaces are allowed; backends that map names onto paths escape them.
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if len(name) > MaxNameBytes {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}
