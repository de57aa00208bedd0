// Package srctest locates names inside source text for tests.
package srctest

import "strings"

// WordIndex returns the index of the first occurrence of word in s that is
// not part of a longer identifier, or -1. Punctuation at either edge of word
// needs no boundary, so "L}" and "f(" are found as written.
func WordIndex(s, word string) int {
	if word == "" {
		return -1
	}
	for from := 0; from <= len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(word)
		before := i == 0 || !isIdent(s[i-1]) || !isIdent(word[0])
		after := end == len(s) || !isIdent(s[end]) || !isIdent(word[len(word)-1])
		if before && after {
			return i
		}
		from = i + 1
	}
	return -1
}

func isIdent(b byte) bool {
	return b == '_' || b == '$' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
