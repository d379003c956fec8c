package dedupe

import (
	"regexp"
	"strings"
)

var (
	trailingPackPattern = regexp.MustCompile(`(?i)\s*[-–—]\s*\d+\s*-?\s*packs?\s*$`)
	parenPackPattern    = regexp.MustCompile(`(?i)\(\s*\d+\s*-?\s*(?:packs?|pc|pcs|pieces?|units?|ct|count)\s*\)`)
	inlinePackPattern   = regexp.MustCompile(`(?i)\b\d+\s*-?\s*(?:packs?|pc|pcs|pieces?|units?)\b`)
	emptyParenPattern   = regexp.MustCompile(`\(\s*\)`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// CanonicalName reduces a product name to its grouping form: pack and piece
// counts removed, whitespace collapsed, case folded.
//
//	"Widget (6-pack)"      -> "widget"
//	"Widget 12 Pack"       -> "widget"
//	"Hex Bolts - 50 pack"  -> "hex bolts"
//	"Socket Set 40 pc"     -> "socket set"
func CanonicalName(name string) string {
	n := trailingPackPattern.ReplaceAllString(name, "")
	n = parenPackPattern.ReplaceAllString(n, " ")
	n = inlinePackPattern.ReplaceAllString(n, " ")
	n = emptyParenPattern.ReplaceAllString(n, " ")
	n = foldName(n)
	n = strings.Trim(n, " -–—,|/")
	if n == "" {
		// A name that is nothing but a count stays distinct
		return foldName(name)
	}
	return n
}

// foldName collapses whitespace and lowercases without stripping counts.
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " ")))
}
