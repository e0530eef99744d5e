package repositories

import (
	"context"
	"time"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// DecryptorRepository
// ─────────────────────────────────────────────────────────────────────────────

// DecryptorRepository persists published decryption tools, keyed by
// (group, tool name).
type DecryptorRepository struct {
	db     Querier
	logger logging.Logger
}

// NewDecryptorRepository constructs a DecryptorRepository.
func NewDecryptorRepository(db Querier, logger logging.Logger) *DecryptorRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DecryptorRepository{db: db, logger: logger}
}

// Upsert stores one decryptor record.
func (r *DecryptorRepository) Upsert(ctx context.Context, d threat.Decryptor) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO decryptors (group_name, name, vendor, url, released_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (group_name, name) DO UPDATE SET
			vendor      = EXCLUDED.vendor,
			url         = EXCLUDED.url,
			released_at = COALESCE(EXCLUDED.released_at, decryptors.released_at)`,
		d.GroupName, d.Name, d.Vendor, d.URL, nullableTime(d.ReleasedAt),
	)
	if err != nil {
		r.logger.Error("decryptor upsert failed",
			logging.String("group", d.GroupName),
			logging.String("name", d.Name),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert decryptor")
	}
	return nil
}

// ListAll returns every stored decryptor ordered by group then name.
func (r *DecryptorRepository) ListAll(ctx context.Context) ([]threat.Decryptor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT group_name, name, vendor, url, released_at
		FROM decryptors
		ORDER BY group_name, name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list decryptors")
	}
	defer rows.Close()

	out := make([]threat.Decryptor, 0, 32)
	for rows.Next() {
		var (
			d        threat.Decryptor
			released *time.Time
		)
		if err := rows.Scan(&d.GroupName, &d.Name, &d.Vendor, &d.URL, &released); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan decryptor row")
		}
		d.ReleasedAt = fromNullableTime(released)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "decryptor row iteration failed")
	}
	return out, nil
}
