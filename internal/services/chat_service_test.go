package services

import (
	"testing"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatFixture(t *testing.T) (*gorm.DB, *ChatService, *ModerationService) {
	db := newTestDB(t)
	moderation := NewModerationService(db)
	users := NewUserService(db, moderation)
	chats := NewChatService(db, users, moderation)
	return db, chats, moderation
}

func TestRequestChatCreatesPendingRoom(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.RequestOutcomeCreated, result.Outcome)
	assert.Equal(t, models.RoomStatusPending, result.Room.Status)
	assert.Equal(t, alice.ID, result.Room.RequestedBy)

	p1, p2 := models.CanonicalPair(alice.ID, yuki.ID)
	assert.Equal(t, p1, result.Room.Participant1ID)
	assert.Equal(t, p2, result.Room.Participant2ID)
}

func TestRequestChatIsIdempotentForRequester(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	first, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	second, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.RequestOutcomeAlreadyPending, second.Outcome)
	assert.Equal(t, first.Room.ID, second.Room.ID)

	var count int64
	require.NoError(t, db.Model(&models.ChatRoom{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRequestChatCrossRequestReportsPendingFromThem(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	_, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	result, err := chats.RequestChat(yuki.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.RequestOutcomePendingFromThem, result.Outcome)
}

func TestRequestChatRejectsSelf(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	alice := createTestUser(t, chats.db, "Alice", models.LanguageEnglish)

	_, err := chats.RequestChat(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrCannotChatSelf)
}

func TestRequestChatRejectsUnknownTarget(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	alice := createTestUser(t, chats.db, "Alice", models.LanguageEnglish)

	_, err := chats.RequestChat(alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRequestChatBlockedEitherDirection(t *testing.T) {
	_, chats, moderation := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	// The target blocked the requester; the requester still gets the
	// generic unavailable error, not a block disclosure.
	require.NoError(t, moderation.BlockUser(yuki.ID, alice.ID, "manual"))

	_, err := chats.RequestChat(alice.ID, yuki.ID)
	assert.ErrorIs(t, err, ErrChatUnavailable)
}

func TestAcceptRequestOnlyRecipientCanAccept(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	_, err = chats.AcceptRequest(result.Room.ID, alice.ID)
	assert.ErrorIs(t, err, ErrRequesterCannotAccept)

	room, err := chats.AcceptRequest(result.Room.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAccepted, room.Status)
	require.NotNil(t, room.AcceptedAt)
}

func TestAcceptRequestRepeatAcceptIsNoOp(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	first, err := chats.AcceptRequest(result.Room.ID, yuki.ID)
	require.NoError(t, err)

	second, err := chats.AcceptRequest(result.Room.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoomStatusAccepted, second.Status)
}

func TestAcceptRequestOutsiderForbidden(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)
	mallory := createTestUser(t, db, "Mallory", models.LanguageEnglish)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	_, err = chats.AcceptRequest(result.Room.ID, mallory.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRejectRequestIncrementsCounter(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	rejection, err := chats.RejectRequest(result.Room.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rejection.RejectionCount)
	assert.False(t, rejection.AutoBlocked)
	assert.Equal(t, models.RoomStatusRejected, rejection.Room.Status)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", yuki.ID).Error)
	assert.Equal(t, 1, stored.RejectionCount(alice.ID))
}

func TestRejectRequestAutoBlocksOnSecondRejection(t *testing.T) {
	_, chats, moderation := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	// First round: request, reject. No block yet.
	first, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	r1, err := chats.RejectRequest(first.Room.ID, yuki.ID)
	require.NoError(t, err)
	assert.False(t, r1.AutoBlocked)

	blocked, err := moderation.IsBlocked(yuki.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	// Second round: the rejected room is replaced by a fresh request.
	second, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.RequestOutcomeCreated, second.Outcome)
	assert.NotEqual(t, first.Room.ID, second.Room.ID)

	r2, err := chats.RejectRequest(second.Room.ID, yuki.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r2.RejectionCount)
	assert.True(t, r2.AutoBlocked)

	blocked, err = moderation.IsBlocked(yuki.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	var block models.Block
	require.NoError(t, db.First(&block, "blocker_id = ? AND blocked_id = ?", yuki.ID, alice.ID).Error)
	assert.Equal(t, models.ReasonAutoBlock, block.Reason)

	// Third request now bounces off the auto-block.
	_, err = chats.RequestChat(alice.ID, yuki.ID)
	assert.ErrorIs(t, err, ErrChatUnavailable)
}

func TestRejectRequestCountsPerCounterpart(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	bob := createTestUser(t, db, "Bob", models.LanguageEnglish)

	ra, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	rb, err := chats.RequestChat(bob.ID, yuki.ID)
	require.NoError(t, err)

	r1, err := chats.RejectRequest(ra.Room.ID, yuki.ID)
	require.NoError(t, err)
	r2, err := chats.RejectRequest(rb.Room.ID, yuki.ID)
	require.NoError(t, err)

	// Different counterparts never share a counter.
	assert.Equal(t, 1, r1.RejectionCount)
	assert.Equal(t, 1, r2.RejectionCount)
	assert.False(t, r2.AutoBlocked)
}

func TestRejectRequestRequesterCannotReject(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)

	_, err = chats.RejectRequest(result.Room.ID, alice.ID)
	assert.ErrorIs(t, err, ErrRequesterCannotAccept)
}

func TestRejectRequestResolvedRoomConflicts(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)

	result, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	_, err = chats.AcceptRequest(result.Room.ID, yuki.ID)
	require.NoError(t, err)

	_, err = chats.RejectRequest(result.Room.ID, yuki.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestListRoomsFiltersAndOrders(t *testing.T) {
	_, chats, moderation := newChatFixture(t)
	db := chats.db
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)
	bob := createTestUser(t, db, "Bob", models.LanguageEnglish)
	carol := createTestUser(t, db, "Carol", models.LanguageEnglish)
	dave := createTestUser(t, db, "Dave", models.LanguageEnglish)

	// Accepted room with alice, pending with bob, rejected with carol,
	// accepted with dave (then dave gets blocked by yuki).
	ra, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	_, err = chats.AcceptRequest(ra.Room.ID, yuki.ID)
	require.NoError(t, err)

	_, err = chats.RequestChat(bob.ID, yuki.ID)
	require.NoError(t, err)

	rc, err := chats.RequestChat(carol.ID, yuki.ID)
	require.NoError(t, err)
	_, err = chats.RejectRequest(rc.Room.ID, yuki.ID)
	require.NoError(t, err)

	rd, err := chats.RequestChat(dave.ID, yuki.ID)
	require.NoError(t, err)
	_, err = chats.AcceptRequest(rd.Room.ID, yuki.ID)
	require.NoError(t, err)
	require.NoError(t, moderation.BlockUser(yuki.ID, dave.ID, "manual"))

	rooms, err := chats.ListRooms(yuki.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	partners := map[uuid.UUID]bool{}
	for _, entry := range rooms {
		partners[entry.Partner.ID] = true
	}
	assert.True(t, partners[alice.ID])
	assert.True(t, partners[bob.ID])
	assert.False(t, partners[carol.ID], "rejected room must be hidden")
	assert.False(t, partners[dave.ID], "blocked partner must be hidden")
}

func TestListRoomsHidesWithdrawnPartner(t *testing.T) {
	_, chats, _ := newChatFixture(t)
	db := chats.db
	yuki := createTestUser(t, db, "ゆき", models.LanguageJapanese)
	alice := createTestUser(t, db, "Alice", models.LanguageEnglish)

	ra, err := chats.RequestChat(alice.ID, yuki.ID)
	require.NoError(t, err)
	_, err = chats.AcceptRequest(ra.Room.ID, yuki.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).Update("deleted", true).Error)

	rooms, err := chats.ListRooms(yuki.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
