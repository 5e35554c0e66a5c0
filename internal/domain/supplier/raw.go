package supplier

// RawCategory is a category as reported by a supplier, before any
// local curation
type RawCategory struct {
	ExternalID string
	Name       string
	Level      int
}

// RawProductCategory is a category reference attached to a raw product
type RawProductCategory struct {
	ID    string
	Name  string
	Level int
}

// RawProduct is one product record as returned by a supplier, tagged with
// its source. The fields are the union of what the two suppliers emit;
// absent fields stay at their zero value and the normalizer decides what
// to do with them.
type RawProduct struct {
	Source      Code
	ExternalID  string
	SKU         string
	Title       string
	Description string
	Brand       string

	// ListPrice is the supplier's regular price. SpecialPrice, when
	// positive, is an active promotional price and takes precedence.
	ListPrice    float64
	SpecialPrice float64

	Stock int

	// CoverImage goes first in the normalized image list
	CoverImage string
	Images     []string

	Categories []RawProductCategory
}

// ProductPage is one page of a supplier's paginated product listing
type ProductPage struct {
	Products []RawProduct
	HasNext  bool
}
