package services

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSelfBlock           = errors.New("cannot block yourself")
	ErrInvalidReportReason = errors.New("invalid report reason")
	ErrReportNotFound      = errors.New("report not found")
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ModerationService owns the block registry, abuse reports and the
// outbound-message content filter.
type ModerationService struct {
	db                  *gorm.DB
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	compiled            bool
	mu                  sync.RWMutex
}

func NewModerationService(db *gorm.DB) *ModerationService {
	ms := &ModerationService{db: db}
	ms.compilePatterns()
	return ms
}

func (ms *ModerationService) compilePatterns() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.compiled {
		return
	}

	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	// Covers both the 3-3-4 and the Japanese 3-4-4 grouping.
	ms.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3,4}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	ms.repeatedCharPattern = regexp.MustCompile(`(?i)(a{5,}|e{5,}|i{5,}|o{5,}|u{5,}|w{5,}|!{5,}|\?{5,}|\.{5,})`)
	ms.compiled = true
}

// FilterContent checks a message before it is persisted. Returns
// ok=false with a machine-readable reason when the text must not be
// sent.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if ms.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	return true, ""
}

// RejectionMessage maps a filter reason to the user-facing text in the
// given display language.
func (ms *ModerationService) RejectionMessage(reason, language string) string {
	en := map[string]string{
		"inappropriate_language":   "This message contains inappropriate language and cannot be sent.",
		"url_not_allowed":          "URLs and web links are not allowed.",
		"contact_info_not_allowed": "Contact information is not allowed.",
		"spam_detected":            "This message appears to be spam.",
	}
	ja := map[string]string{
		"inappropriate_language":   "このメッセージには不適切な言葉が含まれているため、送信できません。",
		"url_not_allowed":          "URLやリンクは送信できません。",
		"contact_info_not_allowed": "連絡先情報は送信できません。",
		"spam_detected":            "このメッセージはスパムと判断されました。",
	}
	table := en
	if language == models.LanguageJapanese {
		table = ja
	}
	if msg, ok := table[reason]; ok {
		return msg
	}
	if language == models.LanguageJapanese {
		return "このメッセージはガイドラインに違反しています。"
	}
	return "This message does not meet our content guidelines."
}

// BlockUser creates a one-directional block. Blocking an already
// blocked user is a no-op; the original record is kept.
func (s *ModerationService) BlockUser(blockerID, blockedID uuid.UUID, reason string) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}
	return s.blockWithin(s.db, blockerID, blockedID, reason)
}

// blockWithin performs the idempotent insert inside the given handle
// so the reject transaction can reuse it.
func (s *ModerationService) blockWithin(tx *gorm.DB, blockerID, blockedID uuid.UUID, reason string) error {
	var existing models.Block
	err := tx.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	block := models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}
	return tx.Create(&block).Error
}

// IsBlocked reports whether viewer has blocked other. One-directional.
func (s *ModerationService) IsBlocked(viewerID, otherID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", viewerID, otherID).
		Count(&count).Error
	return count > 0, err
}

// IsBlockedEither reports whether either user has blocked the other.
// The chat entry and send paths use this symmetric form.
func (s *ModerationService) IsBlockedEither(a, b uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// BlockedIDs returns every user the given user has blocked, for the
// discovery and room-list filters.
func (s *ModerationService) BlockedIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.Block
	if err := s.db.Where("blocker_id = ?", userID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(blocks))
	for i, b := range blocks {
		ids[i] = b.BlockedID
	}
	return ids, nil
}

// CreateReport stores an abuse report with status pending.
func (s *ModerationService) CreateReport(reporterID, reportedID, chatRoomID uuid.UUID, reason string) (*models.Report, error) {
	if !models.ValidReportReason(reason) {
		return nil, ErrInvalidReportReason
	}

	report := models.Report{
		ID:             uuid.New(),
		ReporterID:     reporterID,
		ReportedUserID: reportedID,
		ChatRoomID:     chatRoomID,
		Reason:         reason,
		Status:         "pending",
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

func (s *ModerationService) ListReports(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *ModerationService) ActionReport(reportID uuid.UUID, status, adminNote string) error {
	validStatuses := map[string]bool{"reviewed": true, "actioned": true, "dismissed": true}
	if !validStatuses[status] {
		return errors.New("invalid status: must be reviewed, actioned, or dismissed")
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":     status,
			"admin_note": adminNote,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// hasAny is a helper for listing filters.
func hasAny(set []uuid.UUID, id uuid.UUID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}
