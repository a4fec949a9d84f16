package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	ReportedUserID uuid.UUID `json:"reported_user_id"`
	ChatRoomID     uuid.UUID `json:"chat_room_id"`
	Reason         string    `json:"reason"`
}

type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
	Reason    string    `json:"reason,omitempty"`
}
