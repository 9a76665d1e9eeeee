package mysql

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
)

func TestCommentRepositoryCreateIncrementsPost(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE posts SET comments_count = comments_count \\+ 1").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	comment := &model.Comment{AuthorID: 1, PostID: 4, Text: "nice"}
	require.NoError(t, repo.Create(comment))
	assert.Equal(t, 11, comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT post_id FROM comments").WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}))
	mock.ExpectRollback()

	err := repo.Delete(3)
	assert.True(t, apperrors.Is(err, apperrors.ErrCommentNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryCreateLikeDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO comment_likes").WillReturnError(&gomysql.MySQLError{Number: 1062})
	mock.ExpectRollback()

	err := repo.CreateLike(&model.CommentLike{UserID: 1, CommentID: 2})
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyLiked))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepositoryCreateUpdatesCounters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO follows").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE users SET following_count").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET followers_count").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(&model.Follow{FollowerID: 1, FollowingID: 2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO follows").WillReturnError(&gomysql.MySQLError{Number: 1062})
	mock.ExpectRollback()

	err := repo.Create(&model.Follow{FollowerID: 1, FollowingID: 2})
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyFollowing))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCreateRejectsUnknownType(t *testing.T) {
	db, _ := newMock(t)
	repo := NewNotificationRepository(db)

	err := repo.Create(&model.Notification{RecipientID: 1, SenderID: 2, Type: "mention"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "notification_type")
}

func TestNotificationRepositoryListByRecipient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("ORDER BY created_at DESC, id DESC").WithArgs(1, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "sender_id", "notification_type", "post_id", "is_read", "created_at"}).
			AddRow(5, 1, 2, "like", 9, false, now).
			AddRow(4, 1, 3, "follow", nil, true, now.Add(-time.Minute)))

	items, total, err := repo.ListByRecipient(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, model.NotificationLike, items[0].Type)
	require.NotNil(t, items[0].PostID)
	assert.Equal(t, 9, *items[0].PostID)
	assert.Nil(t, items[1].PostID)
	assert.True(t, items[1].IsRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadForeign(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.MarkRead(5, 2)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotificationNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := newMock(t)
	for range schemaStatements {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
