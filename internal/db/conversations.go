package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/models"
)

// ConversationColumns is the canonical column list for scanning a full
// conversation row.
const ConversationColumns = `id, user_a_id, user_b_id, listing_id, offer_id, last_message_at,
	unread_counts, created_at, updated_at`

// MessageColumns is the canonical column list for scanning a message row.
const MessageColumns = `id, conversation_id, sender_id, receiver_id, content, read,
	created_at, updated_at`

// GetConversationByID fetches a conversation by primary key.
func GetConversationByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.Conversation, error) {
	row := pool.QueryRow(ctx, `SELECT `+ConversationColumns+` FROM conversations WHERE id = $1`, id)
	return ScanConversation(row)
}

// ScanConversation scans a row selected with ConversationColumns. The
// per-participant unread counters are stored as a JSONB object.
func ScanConversation(row pgx.Row) (*models.Conversation, error) {
	var (
		conv         models.Conversation
		userA, userB uuid.UUID
		unread       []byte
	)

	err := row.Scan(
		&conv.ID,
		&userA,
		&userB,
		&conv.ListingID,
		&conv.OfferID,
		&conv.LastMessageAt,
		&unread,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	conv.Participants = []uuid.UUID{userA, userB}
	if err := json.Unmarshal(unread, &conv.UnreadCounts); err != nil {
		return nil, err
	}
	if conv.UnreadCounts == nil {
		conv.UnreadCounts = map[string]int{}
	}

	return &conv, nil
}

// ScanMessage scans a row selected with MessageColumns.
func ScanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&msg.Read,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateUnreadCounts persists a conversation's unread counter map.
func UpdateUnreadCounts(ctx context.Context, pool *pgxpool.Pool, conv *models.Conversation) error {
	counts, err := json.Marshal(conv.UnreadCounts)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		`UPDATE conversations SET unread_counts = $1, updated_at = NOW() WHERE id = $2`,
		counts, conv.ID)
	return err
}
