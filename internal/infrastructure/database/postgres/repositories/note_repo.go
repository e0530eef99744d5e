package repositories

import (
	"context"
	"time"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// NoteRepository
// ─────────────────────────────────────────────────────────────────────────────

// NoteRepository persists ransom note observations. A note is keyed by
// (group, filename); repeated sightings refresh content and extensions.
type NoteRepository struct {
	db     Querier
	logger logging.Logger
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db Querier, logger logging.Logger) *NoteRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NoteRepository{db: db, logger: logger}
}

// Upsert stores one ransom note observation. Notes without a group or
// filename are rejected, they cannot be keyed.
func (r *NoteRepository) Upsert(ctx context.Context, n threat.RansomNote) error {
	if n.GroupName == "" || n.Filename == "" {
		return errors.New(errors.ErrCodeNoteInvalid, "ransom note requires a group name and filename")
	}

	ext := n.Extensions
	if ext == nil {
		ext = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO ransom_notes (group_name, filename, extensions, content, added_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (group_name, filename) DO UPDATE SET
			extensions = EXCLUDED.extensions,
			content    = EXCLUDED.content,
			added_at   = COALESCE(EXCLUDED.added_at, ransom_notes.added_at)`,
		n.GroupName, n.Filename, ext, n.Content, nullableTime(n.AddedAt),
	)
	if err != nil {
		r.logger.Error("ransom note upsert failed",
			logging.String("group", n.GroupName),
			logging.String("filename", n.Filename),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert ransom note")
	}
	return nil
}

// ListAll returns every stored note ordered by group then filename,
// the order the IOC extractor consumes them in.
func (r *NoteRepository) ListAll(ctx context.Context) ([]threat.RansomNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT group_name, filename, extensions, content, added_at
		FROM ransom_notes
		ORDER BY group_name, filename`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list ransom notes")
	}
	defer rows.Close()

	notes := make([]threat.RansomNote, 0, 64)
	for rows.Next() {
		var (
			n     threat.RansomNote
			added *time.Time
		)
		if err := rows.Scan(&n.GroupName, &n.Filename, &n.Extensions, &n.Content, &added); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan ransom note row")
		}
		n.AddedAt = fromNullableTime(added)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "ransom note row iteration failed")
	}
	return notes, nil
}

// ListByGroup returns the notes attributed to one group, exact match.
func (r *NoteRepository) ListByGroup(ctx context.Context, group string) ([]threat.RansomNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT group_name, filename, extensions, content, added_at
		FROM ransom_notes
		WHERE group_name = $1
		ORDER BY filename`, group)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list ransom notes")
	}
	defer rows.Close()

	notes := make([]threat.RansomNote, 0, 8)
	for rows.Next() {
		var (
			n     threat.RansomNote
			added *time.Time
		)
		if err := rows.Scan(&n.GroupName, &n.Filename, &n.Extensions, &n.Content, &added); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan ransom note row")
		}
		n.AddedAt = fromNullableTime(added)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "ransom note row iteration failed")
	}
	return notes, nil
}
