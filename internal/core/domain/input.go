package domain

import (
	"strings"
	"time"
)

type (
	ProductInput struct {
		Title        string    `json:"title" validate:"required,max=200"`
		Slug         string    `json:"slug" validate:"required,max=200,slug"`
		Description  string    `json:"description" validate:"max=1000"`
		CategoryID   string    `json:"category" validate:"required"`
		Tags         []string  `json:"tags"`
		MainImageURL string    `json:"mainImageUrl"`
		IsActive     bool      `json:"isActive"`
		Variants     []Variant `json:"variants" validate:"required,min=1,dive"`
	}

	CategoryInput struct {
		Name           string `json:"name" validate:"required,max=200"`
		Slug           string `json:"slug" validate:"required,max=200,slug"`
		Description    string `json:"description" validate:"max=1000"`
		BannerImageURL string `json:"bannerImageUrl"`
		IsActive       bool   `json:"isActive"`
		SortOrder      int    `json:"sortOrder" validate:"gte=0"`
	}

	BannerInput struct {
		Title       string     `json:"title" validate:"required,max=200"`
		Description string     `json:"description" validate:"max=1000"`
		ImageURL    string     `json:"imageUrl" validate:"required"`
		ButtonText  string     `json:"buttonText"`
		ButtonLink  string     `json:"buttonLink"`
		Order       int        `json:"order" validate:"gte=0"`
		IsActive    bool       `json:"isActive"`
		StartDate   time.Time  `json:"startDate" validate:"required"`
		EndDate     *time.Time `json:"endDate"`
	}

	// AdminInput is the account form of the superadmin. The password is
	// sent only when typed; new accounts must have one.
	AdminInput struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password,omitempty" validate:"omitempty,min=6"`
		Role     string `json:"role" validate:"required,oneof=admin superadmin"`
		IsActive bool   `json:"isActive"`

		// NewAccount is client-only state set by create forms.
		NewAccount bool `json:"-"`
	}
)

// NewProductInput starts a create form; the slug follows the title.
func NewProductInput(title string) ProductInput {
	return ProductInput{Title: title, Slug: Slugify(title), IsActive: true}
}

// SetTitle updates the title. On create forms the slug is re-derived and
// every variant SKU follows it.
func (in *ProductInput) SetTitle(title string, creating bool) {
	in.Title = title
	if creating {
		in.SetSlug(Slugify(title))
	}
}

func (in *ProductInput) SetSlug(slug string) {
	in.Slug = slug
	for i := range in.Variants {
		in.Variants[i].Rebase(slug)
	}
}

// AddTag appends a trimmed tag unless it is empty or already present.
func (in *ProductInput) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || contains(in.Tags, tag) {
		return false
	}
	in.Tags = append(in.Tags, tag)
	return true
}

func (in *ProductInput) RemoveTag(tag string) {
	tags := in.Tags[:0]
	for _, t := range in.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
}

func ProductInputFrom(p Product) ProductInput {
	return ProductInput{
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		CategoryID:   p.Category.ID,
		Tags:         append([]string(nil), p.Tags...),
		MainImageURL: p.MainImageURL,
		IsActive:     p.IsActive,
		Variants:     append([]Variant(nil), p.Variants...),
	}
}

// NewCategoryInput starts a create form; the slug follows the name.
func NewCategoryInput(name string) CategoryInput {
	return CategoryInput{Name: name, Slug: Slugify(name), IsActive: true}
}

func CategoryInputFrom(c Category) CategoryInput {
	return CategoryInput{
		Name:           c.Name,
		Slug:           c.Slug,
		Description:    c.Description,
		BannerImageURL: c.BannerImageURL,
		IsActive:       c.IsActive,
		SortOrder:      c.SortOrder,
	}
}

func BannerInputFrom(b Banner) BannerInput {
	return BannerInput{
		Title:       b.Title,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		ButtonText:  b.ButtonText,
		ButtonLink:  b.ButtonLink,
		Order:       b.Order,
		IsActive:    b.IsActive,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
	}
}

// NewAdminInput starts a create form for a regular admin.
func NewAdminInput() AdminInput {
	return AdminInput{Role: RoleAdmin, IsActive: true, NewAccount: true}
}

// AdminInputFrom fills an edit form. The password stays empty and is
// kept by the server unless typed.
func AdminInputFrom(a Admin) AdminInput {
	return AdminInput{
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
		IsActive: a.IsActive,
	}
}
