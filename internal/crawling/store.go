package crawling

import "strings"

// StoreType is the detected storefront platform.
type StoreType string

const (
	// StoreShopify is a Shopify storefront
	StoreShopify StoreType = "shopify"
	// StoreGeneric is any other site
	StoreGeneric StoreType = "generic"
)

// Listing-page caps per store type.
const (
	ShopifyListingCap = 50
	GenericListingCap = 20
)

var shopifyMarkers = []string{
	"cdn.shopify.com",
	"shopify.theme",
	"shopify-section",
	"window.shopify",
	".myshopify.com",
}

// DetectStoreType inspects homepage HTML for platform markers.
func DetectStoreType(html string) StoreType {
	lower := strings.ToLower(html)
	for _, marker := range shopifyMarkers {
		if strings.Contains(lower, marker) {
			return StoreShopify
		}
	}
	return StoreGeneric
}

// ListingCap returns the maximum number of listing pages to fetch. A positive
// override wins over the store-type default.
func ListingCap(store StoreType, override int) int {
	if override > 0 {
		return override
	}
	if store == StoreShopify {
		return ShopifyListingCap
	}
	return GenericListingCap
}
