package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report reasons selectable in the app.
const (
	ReportReasonHarassment    = "harassment"
	ReportReasonInappropriate = "inappropriate"
	ReportReasonSpam          = "spam"
	ReportReasonHate          = "hate"
	ReportReasonOther         = "other"
)

// Report is a user-submitted abuse report, reviewed via the admin
// moderation endpoints.
type Report struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"reported_user_id"`
	ChatRoomID     uuid.UUID `gorm:"type:uuid;not null" json:"chat_room_id"`
	Reason         string    `gorm:"not null;size:50" json:"reason"`
	Status         string    `gorm:"not null;default:'pending';size:50" json:"status"`
	AdminNote      string    `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ValidReportReason reports whether the reason is one of the fixed
// choices offered by the report dialog.
func ValidReportReason(reason string) bool {
	switch reason {
	case ReportReasonHarassment, ReportReasonInappropriate,
		ReportReasonSpam, ReportReasonHate, ReportReasonOther:
		return true
	}
	return false
}
