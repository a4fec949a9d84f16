package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCannotChatSelf   = errors.New("cannot request a chat with yourself")
	ErrTargetNotFound   = errors.New("user not found")
	ErrTargetDeleted    = errors.New("this user has been deleted")
	ErrChatUnavailable  = errors.New("this conversation is no longer available")
	ErrRoomNotFound     = errors.New("chat room not found")
	ErrNotParticipant   = errors.New("you are not a participant of this chat room")
	ErrNotPending       = errors.New("this request has already been resolved")
	ErrRequesterCannotAccept = errors.New("only the request recipient can respond")
)

// AutoBlockThreshold is the number of rejections of the same
// counterpart after which a block is created automatically.
const AutoBlockThreshold = 2

// ChatService owns the room lifecycle: request, accept, reject with
// the auto-block rule, and the visibility-filtered room list.
type ChatService struct {
	db         *gorm.DB
	users      *UserService
	moderation *ModerationService
	notifier   Notifier
}

func NewChatService(db *gorm.DB, users *UserService, moderation *ModerationService) *ChatService {
	return &ChatService{db: db, users: users, moderation: moderation}
}

func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// RequestResult tells the caller what happened so the client can show
// the matching dialog.
type RequestResult struct {
	Outcome string
	Room    *models.ChatRoom
}

// RejectResult reports the rejection counter state after a reject.
type RejectResult struct {
	Room           *models.ChatRoom
	RejectionCount int
	AutoBlocked    bool
}

// GetRoom loads one room by ID.
func (s *ChatService) GetRoom(roomID uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// roomForPair finds the room for the unordered participant pair.
func (s *ChatService) roomForPair(tx *gorm.DB, a, b uuid.UUID) (*models.ChatRoom, error) {
	p1, p2 := models.CanonicalPair(a, b)
	var room models.ChatRoom
	err := tx.Where("participant1_id = ? AND participant2_id = ?", p1, p2).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// RequestChat asks the target user for a conversation. At most one
// non-rejected room exists per pair; a rejected room is replaced by a
// fresh pending one so re-requests are possible.
func (s *ChatService) RequestChat(requesterID, targetID uuid.UUID) (*RequestResult, error) {
	if requesterID == targetID {
		return nil, ErrCannotChatSelf
	}

	target, err := s.users.GetProfile(targetID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if target.Deleted {
		return nil, ErrTargetDeleted
	}

	// Blocks are checked in both directions; the requester is not told
	// which side blocked.
	blocked, err := s.moderation.IsBlockedEither(requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrChatUnavailable
	}

	existing, err := s.roomForPair(s.db, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case models.RoomStatusPending:
			if existing.RequestedBy == requesterID {
				return &RequestResult{Outcome: dto.RequestOutcomeAlreadyPending, Room: existing}, nil
			}
			return &RequestResult{Outcome: dto.RequestOutcomePendingFromThem, Room: existing}, nil
		case models.RoomStatusAccepted:
			return &RequestResult{Outcome: dto.RequestOutcomeAlreadyAccepted, Room: existing}, nil
		case models.RoomStatusRejected:
			// Fall through: the stale rejected room is replaced below.
		}
	}

	var room *models.ChatRoom
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			if err := tx.Delete(&models.ChatRoom{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
		}
		p1, p2 := models.CanonicalPair(requesterID, targetID)
		now := time.Now()
		room = &models.ChatRoom{
			ID:             uuid.New(),
			Participant1ID: p1,
			Participant2ID: p2,
			Status:         models.RoomStatusPending,
			RequestedBy:    requesterID,
			RequestedAt:    now,
			LastMessageAt:  now,
		}
		return tx.Create(room).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyRoomStatus(room, []uuid.UUID{room.Participant1ID, room.Participant2ID})
	}
	return &RequestResult{Outcome: dto.RequestOutcomeCreated, Room: room}, nil
}

// AcceptRequest resolves a pending request. Accepting an already
// accepted room is a no-op returning the current state.
func (s *ChatService) AcceptRequest(roomID, accepterID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(accepterID) {
		return nil, ErrNotParticipant
	}
	if room.Status == models.RoomStatusAccepted {
		return room, nil
	}
	if room.Status != models.RoomStatusPending {
		return nil, ErrNotPending
	}
	if room.RequestedBy == accepterID {
		return nil, ErrRequesterCannotAccept
	}

	now := time.Now()
	if err := s.db.Model(room).Updates(map[string]interface{}{
		"status":      models.RoomStatusAccepted,
		"accepted_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("accepting request: %w", err)
	}
	room.Status = models.RoomStatusAccepted
	room.AcceptedAt = &now

	if s.notifier != nil {
		s.notifier.NotifyRoomStatus(room, []uuid.UUID{room.Participant1ID, room.Participant2ID})
	}
	return room, nil
}

// RejectRequest resolves a pending request negatively. The room status,
// the rejecter's per-counterpart rejection counter and the possible
// auto-block are written in a single transaction so a crash cannot
// leave the counter behind the room state.
func (s *ChatService) RejectRequest(roomID, rejecterID uuid.UUID) (*RejectResult, error) {
	var result RejectResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var room models.ChatRoom
		if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if !room.HasParticipant(rejecterID) {
			return ErrNotParticipant
		}
		if room.Status != models.RoomStatusPending {
			return ErrNotPending
		}
		if room.RequestedBy == rejecterID {
			return ErrRequesterCannotAccept
		}

		now := time.Now()
		if err := tx.Model(&room).Updates(map[string]interface{}{
			"status":      models.RoomStatusRejected,
			"rejected_at": now,
		}).Error; err != nil {
			return err
		}
		room.Status = models.RoomStatusRejected
		room.RejectedAt = &now

		otherID := room.OtherParticipant(rejecterID)

		var rejecter models.User
		if err := tx.First(&rejecter, "id = ?", rejecterID).Error; err != nil {
			return err
		}
		count := rejecter.IncrementRejection(otherID)
		if err := tx.Model(&models.User{}).Where("id = ?", rejecterID).
			Update("rejection_counts", rejecter.RejectionCounts).Error; err != nil {
			return err
		}

		result.Room = &room
		result.RejectionCount = count

		if count >= AutoBlockThreshold {
			if err := s.moderation.blockWithin(tx, rejecterID, otherID, models.ReasonAutoBlock); err != nil {
				return err
			}
			result.AutoBlocked = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyRoomStatus(result.Room, []uuid.UUID{result.Room.Participant1ID, result.Room.Participant2ID})
	}
	return &result, nil
}

// RoomWithPartner pairs a room with the counterpart's profile for the
// room list.
type RoomWithPartner struct {
	Room    models.ChatRoom
	Partner models.User
}

// ListRooms returns the viewer's rooms, filtered the way the room list
// screen expects: no rejected rooms, no rooms whose counterpart is
// gone or withdrawn, no rooms with a counterpart the viewer blocked.
// Most recent activity first.
func (s *ChatService) ListRooms(viewerID uuid.UUID) ([]RoomWithPartner, error) {
	blocked, err := s.moderation.BlockedIDs(viewerID)
	if err != nil {
		return nil, err
	}

	var rooms []models.ChatRoom
	if err := s.db.
		Where("participant1_id = ? OR participant2_id = ?", viewerID, viewerID).
		Where("status <> ?", models.RoomStatusRejected).
		Order("last_message_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	result := make([]RoomWithPartner, 0, len(rooms))
	for _, room := range rooms {
		otherID := room.OtherParticipant(viewerID)
		if hasAny(blocked, otherID) {
			continue
		}

		var partner models.User
		if err := s.db.First(&partner, "id = ?", otherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if partner.Deleted {
			continue
		}

		result = append(result, RoomWithPartner{Room: room, Partner: partner})
	}
	return result, nil
}
