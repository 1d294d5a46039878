package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationUnreadCounters(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	conv := &Conversation{Participants: []uuid.UUID{alice, bob}}

	assert.Equal(t, 0, conv.UnreadFor(alice))

	conv.IncrementUnread(alice)
	conv.IncrementUnread(alice)
	conv.IncrementUnread(bob)
	assert.Equal(t, 2, conv.UnreadFor(alice))
	assert.Equal(t, 1, conv.UnreadFor(bob))

	conv.DecrementUnread(alice)
	assert.Equal(t, 1, conv.UnreadFor(alice))

	conv.ResetUnread(alice)
	assert.Equal(t, 0, conv.UnreadFor(alice))
	assert.Equal(t, 1, conv.UnreadFor(bob))
}

func TestConversationDecrementFloorsAtZero(t *testing.T) {
	alice := uuid.New()
	conv := &Conversation{}

	conv.DecrementUnread(alice)
	assert.Equal(t, 0, conv.UnreadFor(alice))

	conv.IncrementUnread(alice)
	conv.DecrementUnread(alice)
	conv.DecrementUnread(alice)
	conv.DecrementUnread(alice)
	assert.Equal(t, 0, conv.UnreadFor(alice))
}

func TestConversationHasParticipant(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	conv := &Conversation{Participants: []uuid.UUID{alice, bob}}

	assert.True(t, conv.HasParticipant(alice))
	assert.True(t, conv.HasParticipant(bob))
	assert.False(t, conv.HasParticipant(uuid.New()))
}

func TestOrderedPair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	first, second := OrderedPair(a, b)
	assert.Equal(t, a, first)
	assert.Equal(t, b, second)

	// Same pair regardless of argument order.
	first, second = OrderedPair(b, a)
	assert.Equal(t, a, first)
	assert.Equal(t, b, second)
}
