package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")

	p1, p2 := CanonicalPair(a, b)
	assert.Equal(t, a, p1)
	assert.Equal(t, b, p2)

	// Same pair regardless of argument order.
	q1, q2 := CanonicalPair(b, a)
	assert.Equal(t, p1, q1)
	assert.Equal(t, p2, q2)
}

func TestUnreadFor(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	p1, p2 := CanonicalPair(a, b)

	room := &ChatRoom{Participant1ID: p1, Participant2ID: p2, Unread1: 3, Unread2: 7}

	assert.Equal(t, 3, room.UnreadFor(p1))
	assert.Equal(t, 7, room.UnreadFor(p2))

	assert.Equal(t, "unread1", room.UnreadColumn(p1))
	assert.Equal(t, "unread2", room.UnreadColumn(p2))
}

func TestOtherParticipant(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	p1, p2 := CanonicalPair(a, b)
	room := &ChatRoom{Participant1ID: p1, Participant2ID: p2}

	assert.Equal(t, p2, room.OtherParticipant(p1))
	assert.Equal(t, p1, room.OtherParticipant(p2))
	assert.True(t, room.HasParticipant(a))
	assert.False(t, room.HasParticipant(uuid.New()))
}

func TestRejectionCountsRoundTrip(t *testing.T) {
	u := &User{}
	other := uuid.New()

	assert.Equal(t, 0, u.RejectionCount(other))
	assert.Equal(t, 1, u.IncrementRejection(other))
	assert.Equal(t, 2, u.IncrementRejection(other))
	assert.Equal(t, 2, u.RejectionCount(other))

	val, err := u.RejectionCounts.Value()
	assert.NoError(t, err)

	var scanned RejectionCounts
	assert.NoError(t, scanned.Scan(val))
	assert.Equal(t, 2, scanned[other.String()])
}
