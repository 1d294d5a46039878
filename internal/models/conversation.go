package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a 2-party message thread, optionally anchored to a
// listing and/or an offer. UnreadCounts maps participant id to the
// stored unread counter for that participant.
type Conversation struct {
	ID            uuid.UUID      `json:"id"`
	Participants  []uuid.UUID    `json:"participants"`
	ListingID     *uuid.UUID     `json:"listing_id,omitempty"`
	OfferID       *uuid.UUID     `json:"offer_id,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at"`
	UnreadCounts  map[string]int `json:"unread_counts"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Joined for API responses.
	Listing          *ListingSummary `json:"listing,omitempty"`
	OtherParticipant *UserSummary    `json:"other_participant,omitempty"`
	LastMessage      *Message        `json:"last_message,omitempty"`
	UnreadCount      int             `json:"unread_count"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IncrementUnread bumps the stored unread counter for a participant.
func (c *Conversation) IncrementUnread(userID uuid.UUID) {
	if c.UnreadCounts == nil {
		c.UnreadCounts = make(map[string]int)
	}
	c.UnreadCounts[userID.String()]++
}

// ResetUnread zeroes the stored unread counter for a participant.
func (c *Conversation) ResetUnread(userID uuid.UUID) {
	if c.UnreadCounts == nil {
		c.UnreadCounts = make(map[string]int)
	}
	c.UnreadCounts[userID.String()] = 0
}

// DecrementUnread lowers the stored unread counter for a participant by
// exactly one, floored at zero. Single-message reads always decrement by
// one regardless of how many unread messages actually exist, so the
// counter can drift from the true count; callers rely on ResetUnread
// (page-through) to resynchronize.
func (c *Conversation) DecrementUnread(userID uuid.UUID) {
	if c.UnreadCounts == nil {
		return
	}
	key := userID.String()
	if c.UnreadCounts[key] > 0 {
		c.UnreadCounts[key]--
	}
}

// UnreadFor returns the stored unread counter for a participant.
func (c *Conversation) UnreadFor(userID uuid.UUID) int {
	if c.UnreadCounts == nil {
		return 0
	}
	return c.UnreadCounts[userID.String()]
}

// Message is a single message inside a conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OrderedPair returns the two participant ids in canonical (ascending
// string) order. Conversations store participants canonically so the
// (participants, listing) uniqueness check is order-independent.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}
