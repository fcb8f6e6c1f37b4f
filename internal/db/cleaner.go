package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// orphanTagsQuery removes tags whose entry is gone or was never linked.
const orphanTagsQuery = `
DELETE FROM tags
 WHERE entry_id IS NULL
    OR entry_id NOT IN (SELECT id FROM journal_entries)
`

// SweepOrphanTags deletes tag rows that no longer belong to an entry and
// returns how many were removed.
func SweepOrphanTags(ctx context.Context, db *sqlx.DB) (int64, error) {
	res, err := db.ExecContext(ctx, orphanTagsQuery)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartOrphanTagCleaner sweeps orphaned tags every interval until ctx is done.
func StartOrphanTagCleaner(
	ctx context.Context,
	db *sqlx.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := SweepOrphanTags(ctx, db)
				if err != nil {
					log.Error("failed to clean orphaned tags", zap.Error(err))
					continue
				}
				if rows > 0 {
					log.Info("cleaned orphaned tags", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
