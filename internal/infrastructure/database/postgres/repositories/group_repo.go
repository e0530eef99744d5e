package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// GroupRepository
// ─────────────────────────────────────────────────────────────────────────────

// GroupRepository persists ransomware group profiles as JSONB documents
// keyed by group name. Names are stored as scraped, case preserved.
type GroupRepository struct {
	db     Querier
	logger logging.Logger
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db Querier, logger logging.Logger) *GroupRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GroupRepository{db: db, logger: logger}
}

// Upsert stores or refreshes one group profile.
func (r *GroupRepository) Upsert(ctx context.Context, g threat.GroupProfile) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode group profile")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO groups (name, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		g.Name, doc,
	)
	if err != nil {
		r.logger.Error("group upsert failed", logging.String("name", g.Name), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert group")
	}
	return nil
}

// GetByName returns a single group profile by its exact name.
func (r *GroupRepository) GetByName(ctx context.Context, name string) (threat.GroupProfile, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM groups WHERE name = $1`, name).Scan(&doc)
	if err == pgx.ErrNoRows {
		return threat.GroupProfile{}, errors.New(errors.ErrCodeGroupNotFound, "group not found").
			WithDetail("name=" + name)
	}
	if err != nil {
		return threat.GroupProfile{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load group")
	}

	var g threat.GroupProfile
	if err := json.Unmarshal(doc, &g); err != nil {
		return threat.GroupProfile{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode group profile")
	}
	return g, nil
}

// ListAll returns every stored group profile ordered by name.
func (r *GroupRepository) ListAll(ctx context.Context) ([]threat.GroupProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM groups ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list groups")
	}
	defer rows.Close()

	groups := make([]threat.GroupProfile, 0, 64)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan group row")
		}
		var g threat.GroupProfile
		if err := json.Unmarshal(doc, &g); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode group profile")
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "group row iteration failed")
	}
	return groups, nil
}
