// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package profile

import "strings"

// safeKeyForbidden are the characters the remote key-value tree forbids
// in a path segment.
const safeKeyForbidden = "$#[]/"

// SafeKey percent-encodes a string for use as a key-value tree path
// segment. `.` is also escaped, to `%2E`, since it is otherwise a valid
// character the tree's own clients use for nested-path shorthand.
func SafeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '.':
			b.WriteString("%2E")
		case strings.ContainsRune(safeKeyForbidden, r):
			b.WriteString(percentEncodeRune(r))
		case r == '%':
			b.WriteString("%25")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func percentEncodeRune(r rune) string {
	buf := []byte(string(r))
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte('%')
		b.WriteByte(hexDigit(c >> 4))
		b.WriteByte(hexDigit(c & 0xF))
	}
	return b.String()
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
