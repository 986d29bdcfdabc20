package domain

import "time"

type Category struct {
	ID             string
	Name           string
	Slug           string
	Description    string
	BannerImageURL string
	IsActive       bool
	SortOrder      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c Category) EntityID() string { return c.ID }

func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name}
}
