package domain

import "time"

type ResourceKind string

const (
	ResourceProduct  ResourceKind = "product"
	ResourceCategory ResourceKind = "category"
	ResourceBanner   ResourceKind = "banner"
	ResourceOrder    ResourceKind = "order"
	ResourceAdmin    ResourceKind = "admin"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionToggleActive  Action = "toggle_active"
	ActionUpdateStatus  Action = "update_status"
	ActionApproveRefund Action = "approve_refund"
	ActionRejectRefund  Action = "reject_refund"
)

// An Activity records one successful admin mutation.
type Activity struct {
	EventID    string
	Resource   ResourceKind
	Action     Action
	EntityID   string
	Admin      string
	OccurredAt time.Time
}

// ActivityCounts is the running mutation tally of one resource kind.
type ActivityCounts struct {
	Total    int64
	ByAction map[Action]int64
}
