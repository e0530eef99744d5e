// Package repositories implements the PostgreSQL persistence for threat
// records. Victims are stored relationally because the serving layer
// filters and sorts them; groups and negotiation chats are stored as
// JSONB documents keyed by their natural identifier so that feed
// payloads round-trip byte-faithfully.
package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/frknaykc/dragonseye/pkg/types/common"
)

// Querier abstracts *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// nullableTime converts a feed timestamp to a nullable column value.
// Zero timestamps (unparseable or absent feed dates) map to NULL.
func nullableTime(ts common.Timestamp) *time.Time {
	if ts.IsZero() {
		return nil
	}
	t := ts.Time()
	return &t
}

// fromNullableTime converts a scanned nullable column back to a feed
// timestamp.
func fromNullableTime(t *time.Time) common.Timestamp {
	if t == nil {
		return common.Timestamp{}
	}
	return common.Timestamp(*t)
}
