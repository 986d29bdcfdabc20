package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const SlugMaxLength = 200

var (
	SizeOptions = []string{
		"XS", "S", "M", "L", "XL", "XXL", "Free Size",
	}

	ColorOptions = []string{
		"Black", "White", "Red", "Blue", "Green", "Yellow",
		"Pink", "Purple", "Grey", "Brown", "Beige", "Navy",
		"Maroon", "Orange", "Custom",
	}
)

type (
	Product struct {
		ID           string
		Title        string
		Slug         string
		Description  string
		Category     CategoryRef
		Tags         []string
		MainImageURL string
		IsActive     bool
		Variants     []Variant
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	CategoryRef struct {
		ID   string
		Name string
	}

	Variant struct {
		SKU            string            `json:"sku" validate:"required"`
		Price          decimal.Decimal   `json:"price" validate:"gt=0"`
		CompareAtPrice *decimal.Decimal  `json:"compareAtPrice" validate:"omitempty,gte=0"`
		Stock          int               `json:"stock" validate:"gte=0"`
		Attributes     VariantAttributes `json:"attributes"`
		Images         []string          `json:"images"`

		// SKUOverridden is client-only state: the SKU was typed by hand
		// and must survive size, color and slug edits.
		SKUOverridden bool `json:"-"`
	}

	VariantAttributes struct {
		Size  string `json:"size" validate:"required,size"`
		Color string `json:"color" validate:"required,color"`
	}
)

func (p Product) EntityID() string { return p.ID }

// TotalStock sums the stock of all variants.
func (p Product) TotalStock() int {
	var n int
	for _, v := range p.Variants {
		n += v.Stock
	}
	return n
}

// PriceRange returns the lowest and highest variant price.
func (p Product) PriceRange() (lo, hi decimal.Decimal) {
	for i, v := range p.Variants {
		if i == 0 || v.Price.LessThan(lo) {
			lo = v.Price
		}
		if i == 0 || v.Price.GreaterThan(hi) {
			hi = v.Price
		}
	}
	return lo, hi
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	nonSKUChars  = regexp.MustCompile(`[^A-Z0-9]+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify derives a URL-safe slug from a title or name.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > SlugMaxLength {
		s = strings.TrimRight(s[:SlugMaxLength], "-")
	}
	return s
}

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// GenerateSKU builds the variant SKU from the parent slug, size and color.
//
// Returns empty string while any of the parts is missing.
func GenerateSKU(slug, size, color string) string {
	if slug == "" || size == "" || color == "" {
		return ""
	}
	parts := []string{slug, size, color}
	for i, p := range parts {
		p = nonSKUChars.ReplaceAllString(strings.ToUpper(p), "-")
		parts[i] = strings.Trim(p, "-")
	}
	return strings.Join(parts, "-")
}

// SetSize updates the size and regenerates the SKU unless overridden.
func (v *Variant) SetSize(slug, size string) {
	v.Attributes.Size = size
	v.regenerateSKU(slug)
}

// SetColor updates the color and regenerates the SKU unless overridden.
func (v *Variant) SetColor(slug, color string) {
	v.Attributes.Color = color
	v.regenerateSKU(slug)
}

// SetSKU stores a manually typed SKU. An empty value drops the override.
func (v *Variant) SetSKU(slug, sku string) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		v.SKUOverridden = false
		v.regenerateSKU(slug)
		return
	}
	v.SKU = sku
	v.SKUOverridden = true
}

// Adopt reads the SKU of a submitted variant. An empty SKU, or one that
// is still the generated SKU of prevSlug, follows slug. Anything else is
// a manual override.
func (v *Variant) Adopt(prevSlug, slug string) {
	sku := strings.TrimSpace(v.SKU)
	size, color := v.Attributes.Size, v.Attributes.Color
	generated := sku == "" ||
		strings.EqualFold(sku, GenerateSKU(slug, size, color)) ||
		(prevSlug != "" && strings.EqualFold(sku, GenerateSKU(prevSlug, size, color)))
	if !generated {
		v.SKU = sku
		v.SKUOverridden = true
		return
	}
	v.SKU = sku
	v.SKUOverridden = false
	v.regenerateSKU(slug)
}

// Rebase regenerates the SKU after the parent product slug changed.
func (v *Variant) Rebase(slug string) {
	v.regenerateSKU(slug)
}

func (v *Variant) regenerateSKU(slug string) {
	if v.SKUOverridden {
		return
	}
	if sku := GenerateSKU(slug, v.Attributes.Size, v.Attributes.Color); sku != "" {
		v.SKU = sku
	}
}

func IsSizeOption(s string) bool {
	return contains(SizeOptions, s)
}

func IsColorOption(s string) bool {
	return contains(ColorOptions, s)
}

func contains(vs []string, s string) bool {
	for _, v := range vs {
		if v == s {
			return true
		}
	}
	return false
}
