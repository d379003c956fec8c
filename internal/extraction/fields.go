package extraction

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/site-compiler/internal/types"
)

// Each field has its own named function. Fallbacks inside a function are tried
// in order and the first non-empty match wins.

var (
	h1Pattern    = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`)
	titlePattern = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title>`)
)

// NameCandidates holds every name-like field found on a page. Which one becomes
// the product name is decided later.
type NameCandidates struct {
	Heading string // first non-empty <h1>
	OGTitle string // og:title
	Title   string // <title>
}

// First returns the first non-empty candidate in fallback order.
func (n NameCandidates) First() string {
	for _, v := range []string{n.Heading, n.OGTitle, n.Title} {
		if v != "" {
			return v
		}
	}
	return ""
}

// ExtractName collects the h1, og:title and <title> of a page.
func ExtractName(page string) NameCandidates {
	var n NameCandidates
	for _, m := range h1Pattern.FindAllStringSubmatch(page, -1) {
		if text := cleanInline(m[1]); text != "" {
			n.Heading = text
			break
		}
	}
	n.OGTitle = metaContent(page, "og:title")
	if m := titlePattern.FindStringSubmatch(page); m != nil {
		n.Title = cleanInline(m[1])
	}
	return n
}

var (
	currencyPricePattern = regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d{2})?`)
	usdPricePattern      = regexp.MustCompile(`(?i)\bUSD\s?\d[\d,]*(?:\.\d{2})?|\d[\d,]*(?:\.\d{2})?\s?USD\b`)
	dataPricePattern     = regexp.MustCompile(`(?i)data-price\s*=\s*["']?(\d[\d.,]*)`)
	jsonPricePattern     = regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d[\d.,]*)`)
)

// ExtractPrice returns the first price-looking string, currency retained.
// Order: currency symbol in visible text, USD literal, data-price, JSON "price".
func ExtractPrice(page string) string {
	text := visibleText(page)
	if m := currencyPricePattern.FindString(text); m != "" {
		return m
	}
	if m := usdPricePattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := dataPricePattern.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	if m := jsonPricePattern.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

var paragraphPattern = regexp.MustCompile(`(?is)<p\b[^>]*>(.*?)</p>`)

// Paragraph length bounds for the description fallback.
const (
	minParagraphRunes = 50
	maxParagraphRunes = 500
)

// ExtractDescription returns the meta description, og:description, or the first
// paragraph of 50-500 characters.
func ExtractDescription(page string) string {
	if d := metaContent(page, "description"); d != "" {
		return d
	}
	if d := metaContent(page, "og:description"); d != "" {
		return d
	}
	body := invisiblePattern.ReplaceAllString(page, " ")
	for _, m := range paragraphPattern.FindAllStringSubmatch(body, -1) {
		text := cleanInline(m[1])
		n := utf8.RuneCountInString(text)
		if n >= minParagraphRunes && n <= maxParagraphRunes {
			return text
		}
	}
	return ""
}

var (
	imageTagPattern   = regexp.MustCompile(`(?is)<(?:img|meta)\b[^>]*>`)
	decorativePattern = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:favicon|icons?|logos?|sprites?)(?:[^a-z]|$)`)
)

// ExtractImages returns every <img> source and og:image in document order,
// resolved against pageURL and de-duplicated. Icons, logos, favicons and
// sprites are skipped by file name.
func ExtractImages(page, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	body := invisiblePattern.ReplaceAllString(page, " ")

	seen := make(map[string]bool)
	images := make([]string, 0)
	for _, tag := range imageTagPattern.FindAllString(body, -1) {
		attrs := tagAttrs(tag)
		var src string
		if strings.HasPrefix(strings.ToLower(tag), "<meta") {
			if !strings.EqualFold(attrs["property"], "og:image") && !strings.EqualFold(attrs["name"], "og:image") {
				continue
			}
			src = attrs["content"]
		} else {
			src = attrs["src"]
			if src == "" || strings.HasPrefix(src, "data:") {
				src = attrs["data-src"]
			}
		}

		abs, ok := resolveImage(base, src)
		if !ok || seen[abs] {
			continue
		}
		seen[abs] = true
		images = append(images, abs)
	}
	return images
}

func resolveImage(base *url.URL, src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return "", false
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if decorativePattern.MatchString(path.Base(abs.Path)) {
		return "", false
	}
	return abs.String(), true
}

// SKUKind says which label an identifier was found under.
type SKUKind int

// Identifier labels.
const (
	SKUNone SKUKind = iota
	SKUCode
	SKUItemNumber
	SKUProductNumber
	SKUModelNumber
)

var (
	dataSKUPattern    = regexp.MustCompile(`(?i)data-sku\s*=\s*["']([^"']+)["']`)
	jsonSKUPattern    = regexp.MustCompile(`(?i)"sku"\s*:\s*"([^"]+)"`)
	labeledSKUPattern = regexp.MustCompile(`(?i)\b(sku|item\s*#|item\s+no\.?|product\s*#|model\s*#|part\s*#)\s*:?\s*([A-Z0-9][A-Z0-9._/-]{1,40})`)
)

// ExtractSKU returns the product identifier and the label it was found under.
// Order: data-sku, JSON "sku", labeled text.
func ExtractSKU(page string) (string, SKUKind) {
	if m := dataSKUPattern.FindStringSubmatch(page); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, SKUCode
		}
	}
	if m := jsonSKUPattern.FindStringSubmatch(page); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, SKUCode
		}
	}
	if m := labeledSKUPattern.FindStringSubmatch(visibleText(page)); m != nil {
		label := strings.ToLower(allSpacePattern.ReplaceAllString(m[1], ""))
		switch {
		case strings.HasPrefix(label, "item"):
			return m[2], SKUItemNumber
		case strings.HasPrefix(label, "product"):
			return m[2], SKUProductNumber
		case strings.HasPrefix(label, "model"):
			return m[2], SKUModelNumber
		default:
			return m[2], SKUCode
		}
	}
	return "", SKUNone
}

var (
	tablePattern      = regexp.MustCompile(`(?is)<table\b[^>]*>(.*?)</table>`)
	rowPattern        = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr>`)
	cellPattern       = regexp.MustCompile(`(?is)<(th|td)\b[^>]*>(.*?)</(?:th|td)>`)
	definitionPattern = regexp.MustCompile(`(?is)<dt\b[^>]*>(.*?)</dt>\s*<dd\b[^>]*>(.*?)</dd>`)
	looseSpecPattern  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 /()&.'-]{0,39}):\s*(\S.{0,199})$`)
)

// MaxLooseSpecs caps how many "label: value" lines are taken from body text.
const MaxLooseSpecs = 30

// ExtractSpecs collects label/value pairs from tables, then definition lists,
// then loose "label: value" lines. The first source to supply a key wins.
func ExtractSpecs(page string) types.Specs {
	specs := types.Specs{}
	body := invisiblePattern.ReplaceAllString(page, " ")

	for _, table := range tablePattern.FindAllStringSubmatch(body, -1) {
		for _, row := range rowPattern.FindAllStringSubmatch(table[1], -1) {
			cells := cellPattern.FindAllStringSubmatch(row[1], -1)
			if len(cells) != 2 {
				continue
			}
			specs, _ = specs.Add(strings.TrimSuffix(cleanInline(cells[0][2]), ":"), cleanInline(cells[1][2]))
		}
	}

	for _, m := range definitionPattern.FindAllStringSubmatch(body, -1) {
		specs, _ = specs.Add(strings.TrimSuffix(cleanInline(m[1]), ":"), cleanInline(m[2]))
	}

	loose := 0
	for _, line := range strings.Split(visibleText(body), "\n") {
		if loose >= MaxLooseSpecs {
			break
		}
		m := looseSpecPattern.FindStringSubmatch(line)
		if m == nil || isSchemeLabel(m[1]) || strings.HasPrefix(m[2], "//") {
			continue
		}
		var added bool
		specs, added = specs.Add(m[1], m[2])
		if added {
			loose++
		}
	}

	return specs
}

func isSchemeLabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return l == "http" || l == "https" || l == "mailto" || l == "tel"
}

var (
	jsonBrandObjectPattern = regexp.MustCompile(`(?is)"brand"\s*:\s*\{[^{}]*?"name"\s*:\s*"([^"]+)"`)
	jsonBrandStringPattern = regexp.MustCompile(`(?i)"brand"\s*:\s*"([^"]+)"`)
	itempropBrandPattern   = regexp.MustCompile(`(?is)<([a-z0-9]+)\b[^>]*itemprop\s*=\s*["']brand["'][^>]*>(.*?)</([a-z0-9]+)>`)
)

// ExtractBrand returns the JSON-LD brand, product:brand meta, or itemprop=brand text.
func ExtractBrand(page string) string {
	if m := jsonBrandObjectPattern.FindStringSubmatch(page); m != nil {
		return cleanInline(m[1])
	}
	if m := jsonBrandStringPattern.FindStringSubmatch(page); m != nil {
		return cleanInline(m[1])
	}
	if b := metaContent(page, "product:brand", "og:brand", "brand"); b != "" {
		return b
	}
	if m := itempropBrandPattern.FindStringSubmatch(page); m != nil {
		return cleanInline(m[2])
	}
	return ""
}

var jsonAvailabilityPattern = regexp.MustCompile(`(?i)"availability"\s*:\s*"([^"]+)"`)

// ExtractAvailability returns a stock status such as "InStock".
func ExtractAvailability(page string) string {
	if m := jsonAvailabilityPattern.FindStringSubmatch(page); m != nil {
		return schemaTerm(m[1])
	}
	if a := metaContent(page, "product:availability", "og:availability", "availability"); a != "" {
		return schemaTerm(a)
	}
	return ""
}

// schemaTerm turns "https://schema.org/InStock" into "InStock".
func schemaTerm(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.LastIndex(v, "/"); i >= 0 && strings.Contains(v, "schema.org") {
		return v[i+1:]
	}
	return v
}

var jsonCategoryPattern = regexp.MustCompile(`(?i)"category"\s*:\s*"([^"]+)"`)

// ExtractCategory returns the JSON "category" or product:category meta.
func ExtractCategory(page string) string {
	if m := jsonCategoryPattern.FindStringSubmatch(page); m != nil {
		return cleanInline(m[1])
	}
	return metaContent(page, "product:category", "category")
}

var (
	featureListPattern = regexp.MustCompile(`(?is)<ul\b[^>]*class\s*=\s*["'][^"']*(?:feature|highlight)[^"']*["'][^>]*>(.*?)</ul>`)
	listItemPattern    = regexp.MustCompile(`(?is)<li\b[^>]*>(.*?)</li>`)
)

// ExtractFeatures returns the items of feature or highlight lists.
func ExtractFeatures(page string) []string {
	var features []string
	seen := make(map[string]bool)
	for _, list := range featureListPattern.FindAllStringSubmatch(page, -1) {
		for _, item := range listItemPattern.FindAllStringSubmatch(list[1], -1) {
			text := cleanInline(item[1])
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			features = append(features, text)
		}
	}
	return features
}

// MaxContentRunes caps the stored body text.
const MaxContentRunes = 4000

// ExtractContent returns the visible page text, capped at MaxContentRunes.
func ExtractContent(page string) string {
	return truncateRunes(visibleText(page), MaxContentRunes)
}
