package services

import (
	"testing"
	"time"

	"github.com/enjpbridge/bridge-backend/internal/database"
	"github.com/enjpbridge/bridge-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. A single open
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, displayName, language string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Password:     "hashed",
		DisplayName:  displayName,
		Language:     language,
		AuthProvider: "email",
		LastActiveAt: time.Now(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// acceptedRoom wires a ready-to-chat room between two users.
func acceptedRoom(t *testing.T, db *gorm.DB, a, b *models.User) *models.ChatRoom {
	t.Helper()

	p1, p2 := models.CanonicalPair(a.ID, b.ID)
	now := time.Now()
	room := &models.ChatRoom{
		ID:             uuid.New(),
		Participant1ID: p1,
		Participant2ID: p2,
		Status:         models.RoomStatusAccepted,
		RequestedBy:    a.ID,
		RequestedAt:    now,
		AcceptedAt:     &now,
		LastMessageAt:  now,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}
