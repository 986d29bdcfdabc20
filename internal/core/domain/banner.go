package domain

import "time"

type Banner struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	ButtonText  string
	ButtonLink  string
	Order       int
	IsActive    bool
	StartDate   time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b Banner) EntityID() string { return b.ID }

type BannerStatus string

const (
	BannerActive    BannerStatus = "Active"
	BannerScheduled BannerStatus = "Scheduled"
	BannerExpired   BannerStatus = "Expired"
	BannerInactive  BannerStatus = "Inactive"
)

// BannerStatusAt derives the display status. First match wins:
// inactive, scheduled, expired, active.
func BannerStatusAt(
	isActive bool, start time.Time, end *time.Time, now time.Time,
) BannerStatus {
	switch {
	case !isActive:
		return BannerInactive
	case start.After(now):
		return BannerScheduled
	case end != nil && end.Before(now):
		return BannerExpired
	default:
		return BannerActive
	}
}

func (b Banner) StatusAt(now time.Time) BannerStatus {
	return BannerStatusAt(b.IsActive, b.StartDate, b.EndDate, now)
}
