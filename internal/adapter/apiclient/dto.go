package apiclient

import (
	"encoding/json"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ident reads either the "_id" or the "id" key.
type ident struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
}

func (i ident) value() string {
	if i.MongoID != "" {
		return i.MongoID
	}
	return i.ID
}

// ref is a reference that comes either as a bare id string or as a
// populated object.
type ref struct {
	ident
	Name     string `json:"name"`
	Title    string `json:"title"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (r *ref) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}
	type plain ref
	return json.Unmarshal(data, (*plain)(r))
}

// urls accepts ["u1", ...] and [{"url": "u1"}, ...].
type urls []string

func (u *urls) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}
		out = append(out, obj.URL)
	}
	*u = out
	return nil
}

type (
	productDTO struct {
		ident
		Title        string       `json:"title"`
		Slug         string       `json:"slug"`
		Description  string       `json:"description"`
		Category     *ref         `json:"category"`
		Tags         []string     `json:"tags"`
		MainImageURL string       `json:"mainImageUrl"`
		IsActive     bool         `json:"isActive"`
		Variants     []variantDTO `json:"variants"`
		CreatedAt    time.Time    `json:"createdAt"`
		UpdatedAt    time.Time    `json:"updatedAt"`
	}

	variantDTO struct {
		SKU            string           `json:"sku"`
		Price          decimal.Decimal  `json:"price"`
		CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
		Stock          int              `json:"stock"`
		Attributes     struct {
			Size  string `json:"size"`
			Color string `json:"color"`
		} `json:"attributes"`
		Images urls `json:"images"`
	}

	categoryDTO struct {
		ident
		Name           string    `json:"name"`
		Slug           string    `json:"slug"`
		Description    string    `json:"description"`
		BannerImageURL string    `json:"bannerImageUrl"`
		IsActive       bool      `json:"isActive"`
		SortOrder      int       `json:"sortOrder"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	bannerDTO struct {
		ident
		Title       string     `json:"title"`
		Description string     `json:"description"`
		ImageURL    string     `json:"imageUrl"`
		ButtonText  string     `json:"buttonText"`
		ButtonLink  string     `json:"buttonLink"`
		Order       int        `json:"order"`
		IsActive    bool       `json:"isActive"`
		StartDate   time.Time  `json:"startDate"`
		EndDate     *time.Time `json:"endDate"`
		CreatedAt   time.Time  `json:"createdAt"`
		UpdatedAt   time.Time  `json:"updatedAt"`
	}

	orderDTO struct {
		ident
		OrderNumber   string          `json:"orderNumber"`
		Items         []orderItemDTO  `json:"items"`
		User          *ref            `json:"user"`
		GuestCheckout *guestDTO       `json:"guestCheckout"`
		Status        string          `json:"status"`
		PaymentStatus string          `json:"paymentStatus"`
		Total         decimal.Decimal `json:"total"`
		RefundRequest *refundDTO      `json:"refundRequest"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	orderItemDTO struct {
		Product      *ref   `json:"product"`
		ProductTitle string `json:"productTitle"`
		Title        string `json:"title"`
		SKU          string `json:"sku"`
		Size         string `json:"size"`
		Color        string `json:"color"`
		Variant      *struct {
			SKU        string `json:"sku"`
			Size       string `json:"size"`
			Color      string `json:"color"`
			Attributes struct {
				Size  string `json:"size"`
				Color string `json:"color"`
			} `json:"attributes"`
		} `json:"variant"`
		Quantity int             `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}

	guestDTO struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}

	refundDTO struct {
		Status          string          `json:"status"`
		Amount          decimal.Decimal `json:"amount"`
		Reason          string          `json:"reason"`
		AdminNotes      string          `json:"adminNotes"`
		RejectionReason string          `json:"rejectionReason"`
		RequestedAt     time.Time       `json:"requestedAt"`
	}

	adminDTO struct {
		ident
		Username  string     `json:"username"`
		Email     string     `json:"email"`
		Role      string     `json:"role"`
		IsActive  bool       `json:"isActive"`
		LastLogin *time.Time `json:"lastLogin"`
		CreatedAt time.Time  `json:"createdAt"`
	}

	loginDTO struct {
		Admin  adminDTO `json:"admin"`
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
)

func (d productDTO) toDomain() domain.Product {
	p := domain.Product{
		ID:           d.value(),
		Title:        d.Title,
		Slug:         d.Slug,
		Description:  d.Description,
		Tags:         d.Tags,
		MainImageURL: d.MainImageURL,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Category != nil {
		p.Category = domain.CategoryRef{ID: d.Category.value(), Name: d.Category.Name}
	}
	p.Variants = make([]domain.Variant, len(d.Variants))
	for i, v := range d.Variants {
		p.Variants[i] = domain.Variant{
			SKU:            v.SKU,
			Price:          v.Price,
			CompareAtPrice: v.CompareAtPrice,
			Stock:          v.Stock,
			Attributes: domain.VariantAttributes{
				Size:  v.Attributes.Size,
				Color: v.Attributes.Color,
			},
			Images: []string(v.Images),
		}
	}
	return p
}

func (d categoryDTO) toDomain() domain.Category {
	return domain.Category{
		ID:             d.value(),
		Name:           d.Name,
		Slug:           d.Slug,
		Description:    d.Description,
		BannerImageURL: d.BannerImageURL,
		IsActive:       d.IsActive,
		SortOrder:      d.SortOrder,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (d bannerDTO) toDomain() domain.Banner {
	return domain.Banner{
		ID:          d.value(),
		Title:       d.Title,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		ButtonText:  d.ButtonText,
		ButtonLink:  d.ButtonLink,
		Order:       d.Order,
		IsActive:    d.IsActive,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d orderDTO) toDomain() domain.Order {
	o := domain.Order{
		ID:            d.value(),
		OrderNumber:   d.OrderNumber,
		Status:        domain.OrderStatus(d.Status),
		PaymentStatus: domain.PaymentStatus(d.PaymentStatus),
		Total:         d.Total,
		CreatedAt:     d.CreatedAt,
	}

	switch {
	case d.User != nil:
		o.Customer = domain.Customer{
			UserID: d.User.value(),
			Name:   d.User.FullName,
			Email:  d.User.Email,
		}
	case d.GuestCheckout != nil:
		o.Customer = domain.Customer{
			Name:  d.GuestCheckout.FullName,
			Email: d.GuestCheckout.Email,
			Phone: d.GuestCheckout.Phone,
		}
	}

	o.Items = make([]domain.OrderItem, len(d.Items))
	for i, it := range d.Items {
		item := domain.OrderItem{
			ProductTitle: firstNonEmpty(it.ProductTitle, it.Title),
			SKU:          it.SKU,
			Size:         it.Size,
			Color:        it.Color,
			Quantity:     it.Quantity,
			Price:        it.Price,
		}
		if it.Product != nil {
			item.ProductID = it.Product.value()
			item.ProductTitle = firstNonEmpty(item.ProductTitle, it.Product.Title)
		}
		if v := it.Variant; v != nil {
			item.SKU = firstNonEmpty(item.SKU, v.SKU)
			item.Size = firstNonEmpty(item.Size, v.Size, v.Attributes.Size)
			item.Color = firstNonEmpty(item.Color, v.Color, v.Attributes.Color)
		}
		o.Items[i] = item
	}

	if r := d.RefundRequest; r != nil {
		o.Refund = &domain.RefundRequest{
			Status:          domain.RefundStatus(r.Status),
			Amount:          r.Amount,
			Reason:          r.Reason,
			AdminNotes:      r.AdminNotes,
			RejectionReason: r.RejectionReason,
			RequestedAt:     r.RequestedAt,
		}
	}
	return o
}

func (d adminDTO) toDomain() domain.Admin {
	return domain.Admin{
		ID:        d.value(),
		Username:  d.Username,
		Email:     d.Email,
		Role:      d.Role,
		IsActive:  d.IsActive,
		LastLogin: d.LastLogin,
		CreatedAt: d.CreatedAt,
	}
}

func (d loginDTO) toDomain() domain.SessionState {
	return domain.SessionState{
		Admin: d.Admin.toDomain(),
		Tokens: domain.Tokens{
			AccessToken:  d.Tokens.AccessToken,
			RefreshToken: d.Tokens.RefreshToken,
		},
	}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

// productPayload is the write shape of a product. Money goes out as JSON
// numbers.
type (
	productPayload struct {
		Title        string           `json:"title"`
		Slug         string           `json:"slug"`
		Description  string           `json:"description"`
		Category     string           `json:"category"`
		Tags         []string         `json:"tags"`
		MainImageURL string           `json:"mainImageUrl"`
		IsActive     bool             `json:"isActive"`
		Variants     []variantPayload `json:"variants"`
	}

	variantPayload struct {
		SKU            string       `json:"sku"`
		Price          json.Number  `json:"price"`
		CompareAtPrice *json.Number `json:"compareAtPrice"`
		Stock          int          `json:"stock"`
		Attributes     struct {
			Size  string `json:"size"`
			Color string `json:"color"`
		} `json:"attributes"`
		Images []string `json:"images"`
	}
)

func newProductPayload(in domain.ProductInput) productPayload {
	p := productPayload{
		Title:        in.Title,
		Slug:         in.Slug,
		Description:  in.Description,
		Category:     in.CategoryID,
		Tags:         in.Tags,
		MainImageURL: in.MainImageURL,
		IsActive:     in.IsActive,
		Variants:     make([]variantPayload, len(in.Variants)),
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for i, v := range in.Variants {
		vp := variantPayload{
			SKU:    v.SKU,
			Price:  json.Number(v.Price.String()),
			Stock:  v.Stock,
			Images: v.Images,
		}
		if vp.Images == nil {
			vp.Images = []string{}
		}
		if v.CompareAtPrice != nil {
			n := json.Number(v.CompareAtPrice.String())
			vp.CompareAtPrice = &n
		}
		vp.Attributes.Size = v.Attributes.Size
		vp.Attributes.Color = v.Attributes.Color
		p.Variants[i] = vp
	}
	return p
}
