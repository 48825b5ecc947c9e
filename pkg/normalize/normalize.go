// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duyan.pham.vn@gmail.com

/*
Package normalize canonicalizes user-supplied identifiers before they are
compared or stored.

Login identifiers (emails) arrive from many client platforms with mixed
casing, stray whitespace, and visually equivalent Unicode sequences.
Comparing raw strings would let "User@Example.com" and "user@example.com"
register as two different principals.

Rules applied, in order:

  - Trim surrounding whitespace.
  - Unicode NFKC normalization (folds compatibility equivalents).
  - Lower-casing.

The same function must be used at registration AND at login, otherwise
lookups silently miss.
*/
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email canonicalizes a login email address.
func Email(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}

// DisplayName canonicalizes a display name for storage.
// Casing is preserved; only whitespace and Unicode form are normalized.
func DisplayName(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}
