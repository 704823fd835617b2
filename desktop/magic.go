package desktop

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode"
)

// groupHeader is the first group every desktop file must have.
const groupHeader = "[Desktop Entry]"

var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

// MagicIsDesktopFile returns true if the content is likely a desktop file: after an optional
// UTF-8 BOM, blank lines and comments, the first group header must be [Desktop Entry].
// Read errors count as "not a desktop file" and are not returned.
// The content is checked according to the [desktop entry format] spec.
//
// [desktop entry format]: https://specifications.freedesktop.org/desktop-entry-spec/1.5/basic-format.html
func MagicIsDesktopFile(reader io.Reader) (bool, error) {
	r := bufio.NewReader(reader)

	if maybeBom, err := r.Peek(len(utf8Bom)); err == nil && bytes.Equal(maybeBom, utf8Bom) {
		_, _ = r.Discard(len(utf8Bom))
	}

	inComment := false
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return false, nil
		}

		switch {
		case inComment:
			// Invalid UTF-8 is tolerated in comments.
			inComment = c != '\n'
		case c == unicode.ReplacementChar:
			return false, nil
		case c == '#':
			inComment = true
		case c == '\n':
		case c == '[':
			rest := make([]byte, len(groupHeader)-1)
			if _, err := io.ReadFull(r, rest); err != nil {
				return false, nil
			}
			return "["+string(rest) == groupHeader, nil
		default:
			return false, nil
		}
	}
}

// MagicIsDesktopFilePath returns true if the file at the given path is likely a desktop file.
// The error wraps [os.ErrNotExist] if there is no such file.
func MagicIsDesktopFilePath(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s to check if it is a desktop file: %w", path, err)
	}
	defer file.Close()

	return MagicIsDesktopFile(file)
}
