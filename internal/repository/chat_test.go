package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestChatRepository_CountUnread(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "messages"`)).
		WithArgs(uint(3), uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUnread(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_MarkConversationRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "messages"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	updated, err := repo.MarkConversationRead(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_SetLastMessage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "conversations"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetLastMessage(context.Background(), 1, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_GetMessages_AscendingCreationOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t1.Add(2 * time.Minute)

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE conversation_id = \$1 ORDER BY created_at ASC`).
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "conversation_id", "sender_id", "receiver_id", "text", "read", "created_at"}).
			AddRow(11, 5, 1, 2, "first", true, t1).
			AddRow(12, 5, 2, 1, "second", true, t2).
			AddRow(13, 5, 1, 2, "third", false, t3))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(1, "alice").AddRow(2, "bob"))

	messages, err := repo.GetMessages(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []uint{11, 12, 13}, []uint{messages[0].ID, messages[1].ID, messages[2].ID})
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
	assert.True(t, messages[1].CreatedAt.Before(messages[2].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectConversationLoad covers the enriched re-read GetOrCreateConversation
// performs after resolving the row.
func expectConversationLoad(mock sqlmock.Sqlmock, id, userA, userB uint) {
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE "conversations"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_a_id", "user_b_id", "last_message_id"}).
			AddRow(id, userA, userB, nil))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userA))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userB))
}

func TestChatRepository_GetOrCreateConversation_CreatesOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "conversations" .* ON CONFLICT \("user_a_id","user_b_id"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()
	expectConversationLoad(mock, 9, 1, 2)

	conv, created, err := repo.GetOrCreateConversation(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(9), conv.ID)
	// Participants were normalized before the insert.
	assert.Equal(t, uint(1), conv.UserAID)
	assert.Equal(t, uint(2), conv.UserBID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_GetOrCreateConversation_LostRaceFetchesWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	// Conflict: DO NOTHING returns no row, so the insert assigns no ID.
	mock.ExpectQuery(`INSERT INTO "conversations" .* ON CONFLICT \("user_a_id","user_b_id"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE user_a_id = \$1 AND user_b_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_a_id", "user_b_id"}).
			AddRow(9, 1, 2))
	expectConversationLoad(mock, 9, 1, 2)

	conv, created, err := repo.GetOrCreateConversation(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint(9), conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
