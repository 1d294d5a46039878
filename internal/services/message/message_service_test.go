package message

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trove-app/trove-api/internal/models"
)

func TestApplyReadReceiptDecrementsPerReceipt(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	conv := &models.Conversation{Participants: []uuid.UUID{alice, bob}}
	conv.IncrementUnread(bob)
	conv.IncrementUnread(bob)

	msg := &models.Message{ReceiverID: bob}

	applyReadReceipt(conv, msg, bob)
	assert.True(t, msg.Read)
	assert.Equal(t, 1, conv.UnreadFor(bob))
	assert.Equal(t, 0, conv.UnreadFor(alice))

	// Marking the same message again still decrements; the counter
	// tracks receipts, not distinct unread messages.
	applyReadReceipt(conv, msg, bob)
	assert.Equal(t, 0, conv.UnreadFor(bob))

	// Floored at zero from there on.
	applyReadReceipt(conv, msg, bob)
	assert.Equal(t, 0, conv.UnreadFor(bob))
}
