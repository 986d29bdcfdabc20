package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var _ port.ActivityStorage = (*ActivityRepository)(nil)

const DefaultRecentLimit = 50

type ActivityRepository struct {
	sqldb sqldb
}

func NewActivityRepository(sqldb sqldb) ActivityRepository {
	return ActivityRepository{sqldb}
}

// StoreActivity inserts the batch in one transaction. Redelivered events
// are ignored by event id.
func (r ActivityRepository) StoreActivity(
	ctx context.Context, vs []domain.Activity,
) (storeErr error) {
	const op = "ActivityRepository.StoreActivity"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO admin_activity (
			event_id, resource, action, entity_id, admin, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING;
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	var inserted int64
	for _, v := range vs {
		res, err := stmt.ExecContext(ctx,
			v.EventID, string(v.Resource), string(v.Action),
			v.EntityID, v.Admin, v.OccurredAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	log.Debug("activity stored", "received", len(vs), "inserted", inserted)
	return nil
}

// RecentActivity returns the latest events, newest first. An empty
// resource kind matches every kind.
func (r ActivityRepository) RecentActivity(
	ctx context.Context, kind domain.ResourceKind, limit int,
) ([]domain.Activity, error) {
	const op = "ActivityRepository.RecentActivity"

	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT event_id, resource, action, entity_id, admin, occurred_at
		FROM admin_activity
		WHERE $1::text = '' OR resource = $1::text
		ORDER BY occurred_at DESC, event_id
		LIMIT $2;`

	rows, err := r.sqldb.QueryContext(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var vs []domain.Activity
	for rows.Next() {
		var (
			v             domain.Activity
			resource, act string
		)
		err := rows.Scan(&v.EventID, &resource, &act, &v.EntityID, &v.Admin, &v.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		v.Resource = domain.ResourceKind(resource)
		v.Action = domain.Action(act)
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ActivityByEvent returns one stored event.
func (r ActivityRepository) ActivityByEvent(
	ctx context.Context, eventID string,
) (domain.Activity, error) {
	const op = "ActivityRepository.ActivityByEvent"

	query := `
		SELECT event_id, resource, action, entity_id, admin, occurred_at
		FROM admin_activity
		WHERE event_id = $1;`

	var (
		v             domain.Activity
		resource, act string
	)
	err := r.sqldb.QueryRowContext(ctx, query, eventID).Scan(
		&v.EventID, &resource, &act, &v.EntityID, &v.Admin, &v.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return domain.Activity{}, fmt.Errorf("%s: %w", op, err)
	}
	v.Resource = domain.ResourceKind(resource)
	v.Action = domain.Action(act)
	return v, nil
}
