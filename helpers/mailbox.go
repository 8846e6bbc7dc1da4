package helpers

import (
	"strings"
	"unicode/utf8"

	"github.com/migadu/sievecheck/consts"
)

// MaxMailboxNameLength caps the full mailbox path, matching what the
// IMAP side accepts.
const MaxMailboxNameLength = 255

// ValidMailboxName reports whether name is acceptable as a mailbox name
// in a SIEVE "fileinto" action. Names are slash-separated UTF-8 paths:
// no control characters, no empty path segments, no trailing slash.
func ValidMailboxName(name string) bool {
	if name == "" || len(name) > MaxMailboxNameLength {
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

	// A leading slash denotes an absolute path; the segments after it
	// must still be non-empty.
	segments := strings.Split(strings.TrimPrefix(name, "/"), string(consts.MailboxDelimiter))
	for _, seg := range segments {
		if seg == "" {
			return false
		}
		if strings.TrimSpace(seg) == "" {
			return false
		}
	}
	return true
}
