package pages

import (
	"strings"
)

// Content page priorities. Pages at PrioritySkip are never snapshotted.
const (
	PriorityHigh    = 0.9
	PriorityGood    = 0.8
	PriorityMedium  = 0.6
	PriorityDefault = 0.5
	PrioritySkip    = 0.0
)

var (
	// Brand story pages feed the hero and feature blocks
	highValuePatterns = []string{"about", "our-story", "who-we-are", "mission", "values", "history"}
	goodPatterns      = []string{"faq", "shipping", "returns", "warranty", "contact", "support", "help", "locations", "stores"}
	mediumPatterns    = []string{"blog", "news", "press", "journal", "guides"}
	// Session pages and legal boilerplate carry no storefront content
	skipPatterns = []string{
		"/cart", "/checkout", "/account", "/login", "/signin", "/sign-in", "/register",
		"/wishlist", "/search", "/privacy", "/terms", "/cookie",
	}
)

// PathPriority ranks a same-origin nav target for content snapshotting.
func PathPriority(urlStr string) float64 {
	urlLower := strings.ToLower(urlStr)

	for _, pattern := range skipPatterns {
		if strings.Contains(urlLower, pattern) {
			return PrioritySkip
		}
	}
	for _, pattern := range highValuePatterns {
		if strings.Contains(urlLower, pattern) {
			return PriorityHigh
		}
	}
	for _, pattern := range goodPatterns {
		if strings.Contains(urlLower, pattern) {
			return PriorityGood
		}
	}
	for _, pattern := range mediumPatterns {
		if strings.Contains(urlLower, pattern) {
			return PriorityMedium
		}
	}

	return PriorityDefault
}
