package message

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/models"
	"github.com/trove-app/trove-api/internal/utils"
)

// MessageService handles conversations, messages and unread counters.
type MessageService struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	jwtService *utils.JWTService
}

// NewMessageService creates a new MessageService.
func NewMessageService(cfg *config.Config, pool *pgxpool.Pool, jwtService *utils.JWTService) *MessageService {
	return &MessageService{cfg: cfg, pool: pool, jwtService: jwtService}
}

type getOrCreateConversationRequest struct {
	ParticipantID string  `json:"participant_id"`
	ListingID     *string `json:"listing_id"`
	OfferID       *string `json:"offer_id"`
}

// GetOrCreateConversation finds the conversation between the caller
// and another user for an optional listing, creating it when missing.
// Repeated calls with the same arguments return the same conversation.
func (s *MessageService) GetOrCreateConversation(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req getOrCreateConversationRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		return utils.BadRequest(c, "Invalid participant ID")
	}
	if participantID == userUUID {
		return utils.BadRequest(c, "Cannot start a conversation with yourself")
	}

	var listingID, offerID *uuid.UUID
	if req.ListingID != nil && *req.ListingID != "" {
		id, err := uuid.Parse(*req.ListingID)
		if err != nil {
			return utils.BadRequest(c, "Invalid listing ID")
		}
		listingID = &id
	}
	if req.OfferID != nil && *req.OfferID != "" {
		id, err := uuid.Parse(*req.OfferID)
		if err != nil {
			return utils.BadRequest(c, "Invalid offer ID")
		}
		offerID = &id
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if db.GetUserSummary(ctx, s.pool, participantID) == nil {
		return utils.NotFound(c, "Participant not found")
	}

	conv, err := s.findOrCreateConversation(ctx, userUUID, participantID, listingID, offerID)
	if err != nil {
		log.Printf("error creating conversation: %v", err)
		return utils.ServerError(c, "Error creating conversation")
	}

	s.attachJoins(ctx, conv, userUUID)
	return utils.Success(c, fiber.StatusOK, "Conversation retrieved successfully", conv)
}

// findOrCreateConversation returns the conversation between two users
// for an optional listing, creating it on first use. Participants are
// stored in canonical order, so repeated calls return the same row
// regardless of argument order; insert-then-select keeps this
// idempotent even under concurrent first calls, with the unique index
// on the canonical pair plus listing absorbing the race.
func (s *MessageService) findOrCreateConversation(ctx context.Context, me, other uuid.UUID, listingID, offerID *uuid.UUID) (*models.Conversation, error) {
	userA, userB := models.OrderedPair(me, other)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversations (id, user_a_id, user_b_id, listing_id, offer_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_a_id, user_b_id, COALESCE(listing_id, '00000000-0000-0000-0000-000000000000'::uuid))
		DO NOTHING
	`, uuid.New(), userA, userB, listingID, offerID)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+db.ConversationColumns+` FROM conversations
		WHERE user_a_id = $1 AND user_b_id = $2
			AND COALESCE(listing_id, '00000000-0000-0000-0000-000000000000'::uuid) =
				COALESCE($3, '00000000-0000-0000-0000-000000000000'::uuid)
	`, userA, userB, listingID)

	return db.ScanConversation(row)
}

// GetUserConversations lists the caller's conversations, most recent
// activity first.
func (s *MessageService) GetUserConversations(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	var total int
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE user_a_id = $1 OR user_b_id = $1`, userUUID).
		Scan(&total)
	if err != nil {
		log.Printf("error counting conversations: %v", err)
		return utils.ServerError(c, "Error retrieving conversations")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM conversations
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY last_message_at DESC LIMIT %d OFFSET %d`,
		db.ConversationColumns, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, userUUID)
	if err != nil {
		log.Printf("error querying conversations: %v", err)
		return utils.ServerError(c, "Error retrieving conversations")
	}
	defer rows.Close()

	conversations := []*models.Conversation{}
	for rows.Next() {
		conv, err := db.ScanConversation(rows)
		if err != nil {
			log.Printf("error scanning conversation: %v", err)
			return utils.ServerError(c, "Error retrieving conversations")
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		log.Printf("error reading conversations: %v", err)
		return utils.ServerError(c, "Error retrieving conversations")
	}
	rows.Close()

	for _, conv := range conversations {
		s.attachJoins(ctx, conv, userUUID)
	}

	return utils.SuccessList(c, "Conversations retrieved successfully",
		conversations, utils.PaginationMeta(page, limit, total))
}

// GetConversationMessages returns a page of messages, newest first,
// marks everything addressed to the caller as read and zeroes their
// unread counter.
func (s *MessageService) GetConversationMessages(c fiber.Ctx) error {
	conv, userUUID, errResp := s.participantConversation(c)
	if conv == nil {
		return errResp
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"), s.cfg.DefaultPageSize)

	ctx, cancel := db.GetContext()
	defer cancel()

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conv.ID).Scan(&total)
	if err != nil {
		log.Printf("error counting messages: %v", err)
		return utils.ServerError(c, "Error retrieving messages")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		db.MessageColumns, limit, utils.Offset(page, limit))
	rows, err := s.pool.Query(ctx, query, conv.ID)
	if err != nil {
		log.Printf("error querying messages: %v", err)
		return utils.ServerError(c, "Error retrieving messages")
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg, err := db.ScanMessage(rows)
		if err != nil {
			log.Printf("error scanning message: %v", err)
			return utils.ServerError(c, "Error retrieving messages")
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		log.Printf("error reading messages: %v", err)
		return utils.ServerError(c, "Error retrieving messages")
	}
	rows.Close()

	// Paging through a conversation reads it. This also resynchronizes
	// the stored counter after any single-read drift.
	_, err = s.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE, updated_at = NOW()
		WHERE conversation_id = $1 AND receiver_id = $2 AND read = FALSE
	`, conv.ID, userUUID)
	if err != nil {
		log.Printf("error marking messages read: %v", err)
	} else {
		conv.ResetUnread(userUUID)
		if err := db.UpdateUnreadCounts(ctx, s.pool, conv); err != nil {
			log.Printf("error resetting unread count: %v", err)
		}
		for _, msg := range messages {
			if msg.ReceiverID == userUUID {
				msg.Read = true
			}
		}
	}

	return utils.SuccessList(c, "Messages retrieved successfully",
		messages, utils.PaginationMeta(page, limit, total))
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// SendMessage appends a message to a conversation the caller belongs
// to and bumps the other participant's unread counter.
func (s *MessageService) SendMessage(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var req sendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return utils.BadRequest(c, "Invalid conversation ID")
	}
	if strings.TrimSpace(req.Content) == "" {
		return utils.BadRequest(c, "Message content cannot be empty")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	conv, err := db.GetConversationByID(ctx, s.pool, conversationID)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Conversation not found")
		}
		log.Printf("error fetching conversation: %v", err)
		return utils.ServerError(c, "Error sending message")
	}
	if !conv.HasParticipant(userUUID) {
		return utils.Forbidden(c, "You are not a participant in this conversation")
	}

	receiverID := conv.Participants[0]
	if receiverID == userUUID {
		receiverID = conv.Participants[1]
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+db.MessageColumns,
		uuid.New(), conversationID, userUUID, receiverID, req.Content)

	msg, err := db.ScanMessage(row)
	if err != nil {
		log.Printf("error creating message: %v", err)
		return utils.ServerError(c, "Error sending message")
	}

	conv.IncrementUnread(receiverID)
	if err := db.UpdateUnreadCounts(ctx, s.pool, conv); err != nil {
		log.Printf("error incrementing unread count: %v", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE conversations SET last_message_at = NOW(), updated_at = NOW() WHERE id = $1`,
		conversationID)
	if err != nil {
		log.Printf("error stamping last message time: %v", err)
	}

	return utils.Success(c, fiber.StatusCreated, "Message sent successfully", msg)
}

// applyReadReceipt flags the message read and lowers the receiver's
// stored counter by one, floored at zero. Every receipt decrements,
// including one for a message that was already read, so the counter
// tracks receipts rather than distinct unread messages.
func applyReadReceipt(conv *models.Conversation, msg *models.Message, userID uuid.UUID) {
	msg.Read = true
	conv.DecrementUnread(userID)
}

// MarkMessageAsRead flags a single message read and lowers the
// caller's unread counter by one, floored at zero. Re-marking a read
// message decrements again.
func (s *MessageService) MarkMessageAsRead(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid message ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+db.MessageColumns+` FROM messages WHERE id = $1`, messageID)
	msg, err := db.ScanMessage(row)
	if err != nil {
		if utils.IsNoRows(err) {
			return utils.NotFound(c, "Message not found")
		}
		log.Printf("error fetching message: %v", err)
		return utils.ServerError(c, "Error marking message read")
	}

	if msg.ReceiverID != userUUID {
		return utils.Forbidden(c, "Only the receiver can mark a message read")
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE, updated_at = NOW() WHERE id = $1`, messageID)
	if err != nil {
		log.Printf("error marking message read: %v", err)
		return utils.ServerError(c, "Error marking message read")
	}

	conv, err := db.GetConversationByID(ctx, s.pool, msg.ConversationID)
	if err == nil {
		applyReadReceipt(conv, msg, userUUID)
		if err := db.UpdateUnreadCounts(ctx, s.pool, conv); err != nil {
			log.Printf("error decrementing unread count: %v", err)
		}
	} else {
		msg.Read = true
		log.Printf("error fetching conversation for unread update: %v", err)
	}

	return utils.Success(c, fiber.StatusOK, "Message marked as read", msg)
}

// DeleteConversation removes a conversation and, via cascade, its
// messages. Either participant may delete it.
func (s *MessageService) DeleteConversation(c fiber.Ctx) error {
	conv, _, errResp := s.participantConversation(c)
	if conv == nil {
		return errResp
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, conv.ID)
	if err != nil {
		log.Printf("error deleting conversation %s: %v", conv.ID, err)
		return utils.ServerError(c, "Error deleting conversation")
	}

	return utils.Success(c, fiber.StatusOK, "Conversation deleted successfully", nil)
}

// participantConversation loads the conversation in the :id parameter
// and checks the caller is one of its two participants. On failure it
// returns nil and the already-written error response.
func (s *MessageService) participantConversation(c fiber.Ctx) (*models.Conversation, uuid.UUID, error) {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return nil, uuid.Nil, utils.BadRequest(c, "Invalid user ID")
	}

	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, uuid.Nil, utils.BadRequest(c, "Invalid conversation ID")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	conv, err := db.GetConversationByID(ctx, s.pool, conversationID)
	if err != nil {
		if utils.IsNoRows(err) {
			return nil, uuid.Nil, utils.NotFound(c, "Conversation not found")
		}
		log.Printf("error fetching conversation: %v", err)
		return nil, uuid.Nil, utils.ServerError(c, "Error retrieving conversation")
	}

	if !conv.HasParticipant(userUUID) {
		return nil, uuid.Nil, utils.Forbidden(c, "You are not a participant in this conversation")
	}

	return conv, userUUID, nil
}

// attachJoins fills the embedded payloads the conversation list needs:
// the other participant, the anchored listing, the latest message and
// the caller's unread counter.
func (s *MessageService) attachJoins(ctx context.Context, conv *models.Conversation, userID uuid.UUID) {
	for _, p := range conv.Participants {
		if p != userID {
			conv.OtherParticipant = db.GetUserSummary(ctx, s.pool, p)
		}
	}
	if conv.ListingID != nil {
		conv.Listing = db.GetListingSummary(ctx, s.pool, *conv.ListingID)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+db.MessageColumns+` FROM messages
		WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT 1`, conv.ID)
	if msg, err := db.ScanMessage(row); err == nil {
		conv.LastMessage = msg
	}

	conv.UnreadCount = conv.UnreadFor(userID)
}
