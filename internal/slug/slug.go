// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
)

// nonAlphanumeric matches runs of anything that isn't a lowercase letter
// or digit. Each run collapses to a single hyphen.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given string.
// Example: "Raw Land, Central Valley!" → "raw-land-central-valley"
//
// The algorithm is a compatibility contract with existing URLs: lowercase,
// collapse every non-alphanumeric run to one hyphen, strip leading and
// trailing hyphens. Applying Generate to its own output is a no-op.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
