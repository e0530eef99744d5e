package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// VictimRepository
// ─────────────────────────────────────────────────────────────────────────────

// VictimRepository persists victim posts. Records are keyed by the
// (group, title, discovery time) triple; re-ingesting the same post
// refreshes its mutable fields instead of duplicating it.
type VictimRepository struct {
	db     Querier
	logger logging.Logger
}

// NewVictimRepository constructs a VictimRepository.
func NewVictimRepository(db Querier, logger logging.Logger) *VictimRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VictimRepository{db: db, logger: logger}
}

const upsertVictimSQL = `
	INSERT INTO victims (
		post_title, group_name, country, activity, website,
		description, post_url, screenshot, published_at, discovered_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (group_name, post_title, discovered_at) DO UPDATE SET
		country     = EXCLUDED.country,
		activity    = EXCLUDED.activity,
		website     = EXCLUDED.website,
		description = EXCLUDED.description,
		post_url    = EXCLUDED.post_url,
		screenshot  = EXCLUDED.screenshot,
		published_at = EXCLUDED.published_at`

// Upsert stores one victim post.
func (r *VictimRepository) Upsert(ctx context.Context, v threat.Victim) error {
	_, err := r.db.Exec(ctx, upsertVictimSQL,
		v.PostTitle, v.GroupName, v.Country, v.Activity, v.Website,
		v.Description, v.PostURL, v.Screenshot,
		nullableTime(v.PublishedAt), nullableTime(v.DiscoveredAt),
	)
	if err != nil {
		r.logger.Error("victim upsert failed",
			logging.String("group", v.GroupName),
			logging.String("title", v.PostTitle),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert victim")
	}
	return nil
}

// UpsertBatch stores many victim posts in a single round trip.
func (r *VictimRepository) UpsertBatch(ctx context.Context, victims []threat.Victim) error {
	if len(victims) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, v := range victims {
		batch.Queue(upsertVictimSQL,
			v.PostTitle, v.GroupName, v.Country, v.Activity, v.Website,
			v.Description, v.PostURL, v.Screenshot,
			nullableTime(v.PublishedAt), nullableTime(v.DiscoveredAt),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range victims {
		if _, err := results.Exec(); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert victim batch")
		}
	}

	r.logger.Debug("victim batch upserted", logging.Int("count", len(victims)))
	return nil
}

// ListAll returns every stored victim ordered by discovery time
// descending. The correlation and query services operate on this
// snapshot in memory.
func (r *VictimRepository) ListAll(ctx context.Context) ([]threat.Victim, error) {
	rows, err := r.db.Query(ctx, `
		SELECT post_title, group_name, country, activity, website,
		       description, post_url, screenshot, published_at, discovered_at
		FROM victims
		ORDER BY discovered_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list victims")
	}
	defer rows.Close()

	victims := make([]threat.Victim, 0, 256)
	for rows.Next() {
		v, err := scanVictim(rows)
		if err != nil {
			return nil, err
		}
		victims = append(victims, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "victim row iteration failed")
	}
	return victims, nil
}

// Count returns the number of stored victims.
func (r *VictimRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM victims`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count victims")
	}
	return n, nil
}

func scanVictim(row pgx.Row) (threat.Victim, error) {
	var (
		v          threat.Victim
		published  *time.Time
		discovered *time.Time
	)
	if err := row.Scan(
		&v.PostTitle, &v.GroupName, &v.Country, &v.Activity, &v.Website,
		&v.Description, &v.PostURL, &v.Screenshot, &published, &discovered,
	); err != nil {
		return threat.Victim{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan victim row")
	}
	v.PublishedAt = fromNullableTime(published)
	v.DiscoveredAt = fromNullableTime(discovered)
	return v, nil
}
