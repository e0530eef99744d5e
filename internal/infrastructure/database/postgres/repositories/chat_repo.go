package repositories

import (
	"context"
	"encoding/json"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/pkg/errors"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

// ─────────────────────────────────────────────────────────────────────────────
// ChatRepository
// ─────────────────────────────────────────────────────────────────────────────

// ChatRepository persists captured negotiation transcripts as JSONB
// documents keyed by chat ID. Storing the document whole preserves the
// feed's original paid-field encoding.
type ChatRepository struct {
	db     Querier
	logger logging.Logger
}

// NewChatRepository constructs a ChatRepository.
func NewChatRepository(db Querier, logger logging.Logger) *ChatRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ChatRepository{db: db, logger: logger}
}

// Upsert stores or refreshes one negotiation transcript.
func (r *ChatRepository) Upsert(ctx context.Context, c threat.NegotiationChat) error {
	if c.ChatID == "" {
		return errors.InvalidParam("negotiation chat requires a chat ID")
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode negotiation chat")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO negotiation_chats (chat_id, group_name, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chat_id) DO UPDATE SET
			group_name = EXCLUDED.group_name,
			doc        = EXCLUDED.doc,
			updated_at = now()`,
		c.ChatID, c.GroupName, doc,
	)
	if err != nil {
		r.logger.Error("negotiation chat upsert failed",
			logging.String("chat_id", c.ChatID),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert negotiation chat")
	}
	return nil
}

// ListAll returns every stored transcript. Ordering is left to the
// negotiation service, which sorts within group partitions.
func (r *ChatRepository) ListAll(ctx context.Context) ([]threat.NegotiationChat, error) {
	return r.list(ctx, `SELECT doc FROM negotiation_chats`)
}

// ListByGroup returns the transcripts attributed to one group, exact
// match, case preserved.
func (r *ChatRepository) ListByGroup(ctx context.Context, group string) ([]threat.NegotiationChat, error) {
	return r.list(ctx, `SELECT doc FROM negotiation_chats WHERE group_name = $1`, group)
}

func (r *ChatRepository) list(ctx context.Context, sql string, args ...any) ([]threat.NegotiationChat, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list negotiation chats")
	}
	defer rows.Close()

	chats := make([]threat.NegotiationChat, 0, 64)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan negotiation chat row")
		}
		var c threat.NegotiationChat
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode negotiation chat")
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "negotiation chat row iteration failed")
	}
	return chats, nil
}
