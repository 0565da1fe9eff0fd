// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"strings"

	"github.com/maruel/natural"
)

// NaturalLess orders strings the way a human would: runs of digits compare as integers,
// everything else compares case-insensitively. "random-2" sorts before "random-10".
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalCompare returns -1, 0 or +1 comparing a and b in natural order.
// Strings that are naturally equal but differ in bytes are ordered bytewise,
// so the order is total.
func NaturalCompare(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)

	switch {
	case natural.Less(la, lb):
		return -1
	case natural.Less(lb, la):
		return 1
	}

	return strings.Compare(a, b)
}
