package handlers

import (
	"errors"

	"github.com/enjpbridge/bridge-backend/internal/authctx"
	"github.com/enjpbridge/bridge-backend/internal/dto"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/enjpbridge/bridge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService    *services.ChatService
	messageService *services.MessageService
	userService    *services.UserService
}

func NewChatHandler(chatService *services.ChatService, messageService *services.MessageService, userService *services.UserService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
		userService:    userService,
	}
}

func toRoomResponse(room *models.ChatRoom, viewerID uuid.UUID, partner *models.User) *dto.RoomResponse {
	resp := &dto.RoomResponse{
		ID:            room.ID,
		Status:        room.Status,
		RequestedBy:   room.RequestedBy,
		LastMessage:   room.LastMessage,
		LastMessageAt: room.LastMessageAt,
		Unread:        room.UnreadFor(viewerID),
		AcceptedAt:    room.AcceptedAt,
	}
	if partner != nil {
		p := toPartnerResponse(partner)
		resp.Partner = &p
	}
	return resp
}

// chatServiceError maps room lifecycle errors onto HTTP statuses.
func chatServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrCannotChatSelf):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrTargetNotFound), errors.Is(err, services.ErrRoomNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrTargetDeleted), errors.Is(err, services.ErrChatUnavailable):
		status, message = fiber.StatusGone, err.Error()
	case errors.Is(err, services.ErrNotParticipant):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotPending), errors.Is(err, services.ErrRequesterCannotAccept),
		errors.Is(err, services.ErrRoomNotAccepted):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
		status, message = fiber.StatusBadRequest, err.Error()
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func (h *ChatHandler) RequestChat(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RequestChatRequest
	if err := c.BodyParser(&req); err != nil || req.TargetID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "target_id is required",
		})
	}

	result, err := h.chatService.RequestChat(userID, req.TargetID)
	if err != nil {
		return chatServiceError(c, err)
	}

	status := fiber.StatusOK
	if result.Outcome == dto.RequestOutcomeCreated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.RequestChatResponse{
		Outcome: result.Outcome,
		Room:    toRoomResponse(result.Room, userID, nil),
	})
}

func (h *ChatHandler) AcceptRequest(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	room, err := h.chatService.AcceptRequest(roomID, userID)
	if err != nil {
		return chatServiceError(c, err)
	}

	return c.JSON(toRoomResponse(room, userID, nil))
}

func (h *ChatHandler) RejectRequest(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	result, err := h.chatService.RejectRequest(roomID, userID)
	if err != nil {
		return chatServiceError(c, err)
	}

	return c.JSON(dto.RejectResponse{
		RejectionCount: result.RejectionCount,
		AutoBlocked:    result.AutoBlocked,
	})
}

func (h *ChatHandler) ListRooms(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	entries, err := h.chatService.ListRooms(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load chat rooms",
		})
	}

	rooms := make([]*dto.RoomResponse, 0, len(entries))
	for i := range entries {
		rooms = append(rooms, toRoomResponse(&entries[i].Room, userID, &entries[i].Partner))
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sender := h.userService.GetProfileWithRetry(userID, authctx.GetEmail(c))
	msg, err := h.messageService.SendMessage(userID, roomID, req.Text, sender.Language)
	if err != nil {
		var contentErr *services.ContentError
		if errors.As(err, &contentErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: contentErr.Message,
			})
		}
		return chatServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	})
}

func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	msgs, err := h.messageService.ListMessages(userID, roomID, c.QueryInt("limit", 0))
	if err != nil {
		return chatServiceError(c, err)
	}

	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, dto.MessageResponse{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"messages": out})
}

// MarkRead zeroes the caller's unread counter for the room; opening
// the chat screen calls this.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	if err := h.messageService.ResetUnread(userID, roomID); err != nil {
		return chatServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Marked as read"})
}

func (h *ChatHandler) Translations(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid room id",
		})
	}

	var req dto.TranslateRequest
	if err := c.BodyParser(&req); err != nil || len(req.MessageIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "message_ids is required",
		})
	}

	translations, err := h.messageService.Translations(c.Context(), userID, roomID, req.MessageIDs)
	if err != nil {
		return chatServiceError(c, err)
	}
	return c.JSON(dto.TranslationsResponse{Translations: translations})
}
