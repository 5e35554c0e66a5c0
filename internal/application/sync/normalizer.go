package sync

import (
	"strings"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// MarkupResolution carries everything the normalizer needs to resolve a
// markup percentage for one record without touching storage
type MarkupResolution struct {
	Mode          settings.MarkupMode
	GlobalPercent decimal.Decimal
	// Overrides maps external id to a stored per-product percentage,
	// consulted only in personalized mode
	Overrides map[string]decimal.Decimal
}

// ResolveFor returns the markup percentage for one external id
func (r MarkupResolution) ResolveFor(externalID string) decimal.Decimal {
	if r.Mode == settings.MarkupPersonalized {
		if pct, ok := r.Overrides[externalID]; ok {
			return pct
		}
	}
	return r.GlobalPercent
}

// Normalize converts one raw supplier record into a catalog product, or
// rejects it. Rejection is not an error: records without stock, without a
// positive price or without identity fields are silently dropped.
//
// The function is pure; it performs no I/O.
func Normalize(raw supplier.RawProduct, markup MarkupResolution) (*catalog.Product, bool) {
	if raw.Stock <= 0 {
		return nil, false
	}

	basePrice := resolveBasePrice(raw)
	if !basePrice.IsPositive() {
		return nil, false
	}

	externalID := strings.TrimSpace(raw.ExternalID)
	sku := strings.TrimSpace(raw.SKU)
	if externalID == "" || sku == "" {
		return nil, false
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = sku
	}

	product, err := catalog.NewProduct(raw.Source, externalID, sku, title)
	if err != nil {
		return nil, false
	}

	pct := markup.ResolveFor(externalID)
	if err := product.SetPricing(basePrice, pct); err != nil {
		return nil, false
	}
	if err := product.SetStock(raw.Stock); err != nil {
		return nil, false
	}

	product.Description = strings.TrimSpace(raw.Description)
	product.Brand = strings.TrimSpace(raw.Brand)
	product.Images = buildImageList(raw.CoverImage, raw.Images)
	product.Categories = buildCategoryRefs(raw.Categories)

	return product, true
}

// resolveBasePrice prefers an active special price over the list price
func resolveBasePrice(raw supplier.RawProduct) decimal.Decimal {
	if raw.SpecialPrice > 0 {
		return decimal.NewFromFloat(raw.SpecialPrice)
	}
	return decimal.NewFromFloat(raw.ListPrice)
}

// buildImageList puts the cover image first, then the remaining images in
// supplier order, skipping duplicates and empty entries
func buildImageList(cover string, images []string) catalog.ImageList {
	list := make(catalog.ImageList, 0, len(images)+1)
	seen := make(map[string]struct{}, len(images)+1)

	appendImage := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		list = append(list, url)
	}

	appendImage(cover)
	for _, url := range images {
		appendImage(url)
	}
	return list
}

// buildCategoryRefs maps supplier categories onto the canonical shape,
// defaulting the level to 0 when the supplier does not report one
func buildCategoryRefs(cats []supplier.RawProductCategory) catalog.CategoryRefList {
	refs := make(catalog.CategoryRefList, 0, len(cats))
	for _, c := range cats {
		if strings.TrimSpace(c.ID) == "" && strings.TrimSpace(c.Name) == "" {
			continue
		}
		level := c.Level
		if level < 0 {
			level = 0
		}
		refs = append(refs, catalog.CategoryRef{ID: c.ID, Name: c.Name, Level: level})
	}
	return refs
}
