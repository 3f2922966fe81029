package walker

import (
	"bytes"
	"unicode/utf8"
)

// IsText reports whether a content sample looks like UTF-8 text. Files with
// null bytes or invalid UTF-8 are classified as binary. A sample cut mid-way
// through a multibyte character must not be misclassified, so an incomplete
// trailing sequence is trimmed before validation.
func IsText(sample []byte) bool {
	if len(sample) == 0 {
		return true // empty files are text
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	return utf8.Valid(trimIncompleteRune(sample))
}

// trimIncompleteRune drops a trailing incomplete UTF-8 sequence, if any.
// UTF-8 characters are at most 4 bytes, so only the tail needs inspection.
func trimIncompleteRune(buffer []byte) []byte {
	n := len(buffer)
	start := n - utf8.UTFMax
	if start < 0 {
		start = 0
	}

	for i := n - 1; i >= start; i-- {
		b := buffer[i]
		if b&0xC0 == 0x80 {
			continue // continuation byte, keep scanning back
		}
		// b starts a character; drop it if its full length runs past the end.
		if size := expectedRuneLen(b); size > n-i {
			return buffer[:i]
		}
		break
	}
	return buffer
}

func expectedRuneLen(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 1
}
