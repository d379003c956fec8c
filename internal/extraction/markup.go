package extraction

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	invisiblePattern  = regexp.MustCompile(`(?is)<script\b.*?</script>|<style\b.*?</style>|<noscript\b.*?</noscript>|<template\b.*?</template>|<!--.*?-->`)
	blockBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6]|dt|dd|section|article|header|footer|table|ul|ol)\s*>`)
	tagPattern        = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern      = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	allSpacePattern   = regexp.MustCompile(`\s+`)
	attrPattern       = regexp.MustCompile(`([A-Za-z_:][A-Za-z0-9_:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	metaTagPattern    = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
)

// cleanInline strips tags from a fragment, decodes entities and collapses all
// whitespace to single spaces.
func cleanInline(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(allSpacePattern.ReplaceAllString(text, " "))
}

// visibleText returns the page text with one line per block element.
func visibleText(page string) string {
	text := invisiblePattern.ReplaceAllString(page, " ")
	text = blockBreakPattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// tagAttrs parses the attributes of a single start tag. Names are lowercased;
// the first occurrence of a name wins.
func tagAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(m[1])
		if _, dup := attrs[name]; dup {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value == "" {
			value = m[4]
		}
		attrs[name] = html.UnescapeString(value)
	}
	return attrs
}

// metaContent returns the content of the first <meta> whose property or name
// equals one of keys, tried in key order.
func metaContent(page string, keys ...string) string {
	tags := metaTagPattern.FindAllString(page, -1)
	for _, key := range keys {
		for _, tag := range tags {
			attrs := tagAttrs(tag)
			if strings.EqualFold(attrs["property"], key) || strings.EqualFold(attrs["name"], key) || strings.EqualFold(attrs["itemprop"], key) {
				if content := strings.TrimSpace(attrs["content"]); content != "" {
					return cleanInline(content)
				}
			}
		}
	}
	return ""
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
