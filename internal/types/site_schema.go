// Package types provides type definitions for structured data used throughout the site-compiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is written into every compiled schema's meta.
const SchemaVersion = 1

// BlockType is the closed set of layout block kinds.
type BlockType string

// Layout block kinds.
const (
	BlockNav          BlockType = "nav"
	BlockHero         BlockType = "hero"
	BlockText         BlockType = "text"
	BlockImage        BlockType = "image"
	BlockList         BlockType = "list"
	BlockQuote        BlockType = "quote"
	BlockHTML         BlockType = "html"
	BlockProductGrid  BlockType = "productGrid"
	BlockTrustBar     BlockType = "trustBar"
	BlockCategoryGrid BlockType = "categoryGrid"
	BlockFeatureGrid  BlockType = "featureGrid"
	BlockCTAStrip     BlockType = "ctaStrip"
	BlockFooter       BlockType = "footer"
)

// AllBlockTypes lists every block kind. NewBlockContent must handle each one.
var AllBlockTypes = []BlockType{
	BlockNav, BlockHero, BlockText, BlockImage, BlockList, BlockQuote, BlockHTML,
	BlockProductGrid, BlockTrustBar, BlockCategoryGrid, BlockFeatureGrid,
	BlockCTAStrip, BlockFooter,
}

// BlockContent is implemented only by the content structs in this file.
type BlockContent interface {
	BlockType() BlockType
}

// NewBlockContent returns an empty content value for t, or an error for an
// unknown type. This is the single decode-side dispatch point.
func NewBlockContent(t BlockType) (BlockContent, error) {
	switch t {
	case BlockNav:
		return &NavContent{}, nil
	case BlockHero:
		return &HeroContent{}, nil
	case BlockText:
		return &TextContent{}, nil
	case BlockImage:
		return &ImageContent{}, nil
	case BlockList:
		return &ListContent{}, nil
	case BlockQuote:
		return &QuoteContent{}, nil
	case BlockHTML:
		return &HTMLContent{}, nil
	case BlockProductGrid:
		return &ProductGridContent{}, nil
	case BlockTrustBar:
		return &TrustBarContent{}, nil
	case BlockCategoryGrid:
		return &CategoryGridContent{}, nil
	case BlockFeatureGrid:
		return &FeatureGridContent{}, nil
	case BlockCTAStrip:
		return &CTAStripContent{}, nil
	case BlockFooter:
		return &FooterContent{}, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// Link is a labelled href used by nav, footer, category and CTA content.
type Link struct {
	Label    string `json:"label"`
	Href     string `json:"href"`
	External bool   `json:"external,omitempty"`
}

// NavContent is the content of a nav block.
type NavContent struct {
	Items []Link `json:"items"`
}

// HeroContent is the content of a hero block.
type HeroContent struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading,omitempty"`
	Image      string `json:"image,omitempty"`
}

// TextContent is the content of a text block. Level is non-zero for headings.
type TextContent struct {
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

// ImageContent is the content of an image block.
type ImageContent struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ListContent is the content of a list block.
type ListContent struct {
	Items []string `json:"items"`
}

// QuoteContent is the content of a quote block.
type QuoteContent struct {
	Text string `json:"text"`
}

// HTMLContent carries embedded markup passed through untouched.
type HTMLContent struct {
	HTML string `json:"html"`
}

// ProductCard is a product as shown in a grid.
type ProductCard struct {
	Name  string   `json:"name"`
	URL   string   `json:"url"`
	Price *float64 `json:"price"`
	Image string   `json:"image,omitempty"`
}

// ProductGridContent is the content of a productGrid block.
type ProductGridContent struct {
	Title    string        `json:"title,omitempty"`
	Products []ProductCard `json:"products"`
}

// TrustBarContent is the content of a trustBar block.
type TrustBarContent struct {
	Items []string `json:"items"`
}

// CategoryGridContent is the content of a categoryGrid block.
type CategoryGridContent struct {
	Categories []Link `json:"categories"`
}

// Feature is one tile of a feature grid.
type Feature struct {
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

// FeatureGridContent is the content of a featureGrid block.
type FeatureGridContent struct {
	Features []Feature `json:"features"`
}

// CTAStripContent is the content of a ctaStrip block.
type CTAStripContent struct {
	Primary   Link  `json:"primary"`
	Secondary *Link `json:"secondary,omitempty"`
}

// FooterContent is the content of a footer block.
type FooterContent struct {
	Brand string `json:"brand"`
	Links []Link `json:"links,omitempty"`
}

func (NavContent) BlockType() BlockType          { return BlockNav }
func (HeroContent) BlockType() BlockType         { return BlockHero }
func (TextContent) BlockType() BlockType         { return BlockText }
func (ImageContent) BlockType() BlockType        { return BlockImage }
func (ListContent) BlockType() BlockType         { return BlockList }
func (QuoteContent) BlockType() BlockType        { return BlockQuote }
func (HTMLContent) BlockType() BlockType         { return BlockHTML }
func (ProductGridContent) BlockType() BlockType  { return BlockProductGrid }
func (TrustBarContent) BlockType() BlockType     { return BlockTrustBar }
func (CategoryGridContent) BlockType() BlockType { return BlockCategoryGrid }
func (FeatureGridContent) BlockType() BlockType  { return BlockFeatureGrid }
func (CTAStripContent) BlockType() BlockType     { return BlockCTAStrip }
func (FooterContent) BlockType() BlockType       { return BlockFooter }

// BlockLayout carries optional presentation hints.
type BlockLayout struct {
	Columns int    `json:"columns,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// Action is a call to action attached to a block.
type Action struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Kind  string `json:"kind"` // primary, secondary, link
}

// LayoutBlock is one section of a compiled page.
type LayoutBlock struct {
	ID      string       `json:"id"`
	Type    BlockType    `json:"type"`
	Content BlockContent `json:"content"`
	Layout  *BlockLayout `json:"layout,omitempty"`
	Actions []Action     `json:"actions,omitempty"`
}

// NewBlock builds a block whose Type always agrees with its content.
func NewBlock(content BlockContent) LayoutBlock {
	return LayoutBlock{Type: content.BlockType(), Content: content}
}

type layoutBlockJSON struct {
	ID      string          `json:"id"`
	Type    BlockType       `json:"type"`
	Content json.RawMessage `json:"content"`
	Layout  *BlockLayout    `json:"layout,omitempty"`
	Actions []Action        `json:"actions,omitempty"`
}

// MarshalJSON rejects blocks whose Type disagrees with their content.
func (b LayoutBlock) MarshalJSON() ([]byte, error) {
	if b.Content == nil {
		return nil, fmt.Errorf("block %s has no content", b.ID)
	}
	if b.Content.BlockType() != b.Type {
		return nil, fmt.Errorf("block %s: type %q does not match content %q", b.ID, b.Type, b.Content.BlockType())
	}
	content, err := json.Marshal(b.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(layoutBlockJSON{
		ID:      b.ID,
		Type:    b.Type,
		Content: content,
		Layout:  b.Layout,
		Actions: b.Actions,
	})
}

// UnmarshalJSON decodes content according to the block's type.
func (b *LayoutBlock) UnmarshalJSON(data []byte) error {
	var raw layoutBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := NewBlockContent(raw.Type)
	if err != nil {
		return fmt.Errorf("block %s: %w", raw.ID, err)
	}
	if len(raw.Content) > 0 {
		if err := json.Unmarshal(raw.Content, content); err != nil {
			return fmt.Errorf("block %s: invalid %s content: %w", raw.ID, raw.Type, err)
		}
	}
	*b = LayoutBlock{
		ID:      raw.ID,
		Type:    raw.Type,
		Content: content,
		Layout:  raw.Layout,
		Actions: raw.Actions,
	}
	return nil
}

// SitePage is one compiled page.
type SitePage struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Sections []LayoutBlock `json:"sections"`
}

// SchemaMeta describes how a schema was produced. It holds no timestamps so that
// recompiling unchanged input is byte-stable.
type SchemaMeta struct {
	Brand         string `json:"brand"`
	StoreType     string `json:"storeType,omitempty"`
	ProductCount  int    `json:"productCount"`
	PageCount     int    `json:"pageCount"`
	Derived       bool   `json:"derived"`
	ResearchFacts int    `json:"researchFacts"`
	Version       int    `json:"version"`
}

// SiteSchema is the compiled schema.json consumed by the renderer.
type SiteSchema struct {
	Domain string     `json:"domain"`
	Pages  []SitePage `json:"pages"`
	Meta   SchemaMeta `json:"meta"`
}

// FindPage returns the page with the given path, or nil.
func (s *SiteSchema) FindPage(path string) *SitePage {
	if s == nil {
		return nil
	}
	for i := range s.Pages {
		if s.Pages[i].Path == path {
			return &s.Pages[i]
		}
	}
	return nil
}
