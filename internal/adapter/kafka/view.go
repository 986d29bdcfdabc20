package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/niksmo/ecom-admin/internal/core/domain"
)

// An ActivityCountsView reads the counter group table.
type ActivityCountsView struct {
	gv *goka.View
}

func NewActivityCountsView(
	seedBrokers []string, group string,
) (ActivityCountsView, error) {
	const op = "NewActivityCountsView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		countsCodec{},
	)
	if err != nil {
		return ActivityCountsView{}, opErr(err, op)
	}

	return ActivityCountsView{gv}, nil
}

func (v ActivityCountsView) Run(ctx context.Context) {
	const op = "ActivityCountsView.Run"
	log := slog.With("op", op)

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

// Counts returns the tally of kind; a kind with no activity yet has zero
// counts.
func (v ActivityCountsView) Counts(kind domain.ResourceKind) (domain.ActivityCounts, error) {
	const op = "ActivityCountsView.Counts"

	raw, err := v.gv.Get(string(kind))
	if err != nil {
		return domain.ActivityCounts{}, opErr(err, op)
	}
	if raw == nil {
		return domain.ActivityCounts{ByAction: map[domain.Action]int64{}}, nil
	}

	cv, ok := raw.(countsValue)
	if !ok {
		return domain.ActivityCounts{}, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, raw), op,
		)
	}
	return cv.toDomain(), nil
}
