package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/enjpbridge/bridge-backend/internal/push"
	"github.com/enjpbridge/bridge-backend/internal/translate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message exceeds the maximum length")
	ErrRoomNotAccepted  = errors.New("this chat request has not been accepted yet")
	ErrContentRejected  = errors.New("message rejected by the content filter")
)

// ContentError carries the bilingual user-facing text for a filtered
// message alongside the sentinel.
type ContentError struct {
	Reason  string
	Message string
}

func (e *ContentError) Error() string { return e.Message }

func (e *ContentError) Unwrap() error { return ErrContentRejected }

// MessageService persists messages into accepted rooms, maintains the
// per-participant unread counters and hands deliveries to push and
// websocket sinks without blocking the sender.
type MessageService struct {
	db         *gorm.DB
	chats      *ChatService
	moderation *ModerationService
	translator *translate.Client
	cache      translate.Cache
	pusher     push.Sender
	notifier   Notifier
}

func NewMessageService(db *gorm.DB, chats *ChatService, moderation *ModerationService, translator *translate.Client, cache translate.Cache, pusher push.Sender) *MessageService {
	return &MessageService{
		db:         db,
		chats:      chats,
		moderation: moderation,
		translator: translator,
		cache:      cache,
		pusher:     pusher,
	}
}

func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendMessage validates, filters and persists one message, updating the
// room summary and the recipient's unread counter in the same
// transaction. Push and websocket delivery happen after commit and
// never fail the send.
func (s *MessageService) SendMessage(senderID uuid.UUID, roomID uuid.UUID, text string, senderLanguage string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	room, err := s.chats.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	if room.Status != models.RoomStatusAccepted {
		return nil, ErrRoomNotAccepted
	}

	recipientID := room.OtherParticipant(senderID)
	blocked, err := s.moderation.IsBlockedEither(senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrChatUnavailable
	}

	if ok, reason := s.moderation.FilterContent(text); !ok {
		return nil, &ContentError{
			Reason:  reason,
			Message: s.moderation.RejectionMessage(reason, senderLanguage),
		}
	}

	var sender models.User
	if err := s.db.First(&sender, "id = ?", senderID).Error; err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         uuid.New(),
		ChatRoomID: room.ID,
		SenderID:   senderID,
		SenderName: sender.DisplayName,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"last_message":    msg.Text,
			"last_message_at": msg.CreatedAt,
			room.UnreadColumn(recipientID): gorm.Expr(room.UnreadColumn(recipientID)+" + 1"),
		}
		return tx.Model(&models.ChatRoom{}).Where("id = ?", room.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}

	go s.deliver(room, msg, &sender, recipientID)

	return msg, nil
}

// deliver fans the message out to the recipient's push token and the
// websocket hub. Failures are logged, never surfaced to the sender.
func (s *MessageService) deliver(room *models.ChatRoom, msg *models.Message, sender *models.User, recipientID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.NotifyNewMessage(room, msg)
	}

	if s.pusher == nil {
		return
	}
	var recipient models.User
	if err := s.db.First(&recipient, "id = ?", recipientID).Error; err != nil {
		slog.Warn("push delivery skipped, recipient lookup failed", "recipient_id", recipientID, "error", err)
		return
	}
	if recipient.Deleted || recipient.PushToken == "" {
		return
	}
	// A shared device means both accounts carry the same token; do not
	// notify the sender about their own message.
	if recipient.PushToken == sender.PushToken {
		return
	}

	title := fmt.Sprintf("New message from %s", sender.DisplayName)
	if recipient.Language == models.LanguageJapanese {
		title = fmt.Sprintf("%sさんからメッセージが届きました", sender.DisplayName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.pusher.Send(ctx, recipient.PushToken, title, msg.Text, map[string]string{
		"type":    "new_message",
		"room_id": room.ID.String(),
	})
}

// ListMessages returns the room history oldest first, after verifying
// the viewer may see the room.
func (s *MessageService) ListMessages(viewerID, roomID uuid.UUID, limit int) ([]models.Message, error) {
	room, err := s.chats.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(viewerID) {
		return nil, ErrNotParticipant
	}

	q := s.db.Where("chat_room_id = ?", roomID).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var msgs []models.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ResetUnread zeroes the viewer's own unread counter for the room.
func (s *MessageService) ResetUnread(viewerID, roomID uuid.UUID) error {
	room, err := s.chats.GetRoom(roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(viewerID) {
		return ErrNotParticipant
	}
	return s.db.Model(&models.ChatRoom{}).Where("id = ?", roomID).
		Update(room.UnreadColumn(viewerID), 0).Error
}

// Translations returns the viewer's translated rendering of the given
// room messages. Each message gets at most one provider attempt per
// viewer; the outcome, passthrough included, is cached so retries do
// not hammer the providers.
func (s *MessageService) Translations(ctx context.Context, viewerID, roomID uuid.UUID, messageIDs []uuid.UUID) (map[string]string, error) {
	room, err := s.chats.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(viewerID) {
		return nil, ErrNotParticipant
	}

	var viewer models.User
	if err := s.db.First(&viewer, "id = ?", viewerID).Error; err != nil {
		return nil, err
	}
	target := viewer.Language
	if target == "" {
		target = models.LanguageEnglish
	}

	result := make(map[string]string, len(messageIDs))
	for _, msgID := range messageIDs {
		key := translate.CacheKey(viewerID.String(), msgID.String())
		if cached, ok := s.cache.Get(ctx, key); ok {
			result[msgID.String()] = cached
			continue
		}

		var msg models.Message
		if err := s.db.First(&msg, "id = ? AND chat_room_id = ?", msgID, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		source := translate.DetectLanguage(msg.Text)
		var translated string
		if source == "" || source == target {
			translated = msg.Text
		} else {
			translated, _ = s.translator.Translate(ctx, msg.Text, source, target)
		}

		s.cache.Set(ctx, key, translated)
		result[msgID.String()] = translated
	}
	return result, nil
}
