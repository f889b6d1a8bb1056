package services

import (
	"context"
	"database/sql"
	"errors"

	"foundgames-backend-go/internal/verification"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type DashboardSummary struct {
	Buildings       int                `json:"buildings"`
	ActiveResidents int                `json:"activeResidents"`
	PendingReviews  int                `json:"pendingReviews"`
	LastImport      *ImportHistoryItem `json:"lastImport"`
}

// Summary gathers the admin dashboard counters concurrently.
func Summary(ctx context.Context, db *sqlx.DB) (DashboardSummary, error) {
	var out DashboardSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.GetContext(ctx, &out.Buildings, `SELECT count(*) FROM buildings WHERE is_active`)
	})
	g.Go(func() error {
		return db.GetContext(ctx, &out.ActiveResidents, `SELECT count(*) FROM residents WHERE is_active`)
	})
	g.Go(func() error {
		return db.GetContext(ctx, &out.PendingReviews,
			`SELECT count(*) FROM verification_requests WHERE status IN ($1, $2)`,
			verification.StatusPending, verification.StatusManualReview)
	})
	g.Go(func() error {
		var last ImportHistoryItem
		err := db.GetContext(ctx, &last, `
SELECT l.id, l.building_id, COALESCE(b.name, 'All buildings') AS building_name, l.imported_by,
       l.file_name, l.record_count, l.success_count, l.error_count, l.created_at
FROM import_logs l
LEFT JOIN buildings b ON b.id = l.building_id
ORDER BY l.created_at DESC
LIMIT 1`)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out.LastImport = &last
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return out, nil
}
