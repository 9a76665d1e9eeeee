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

var postRowColumns = []string{"id", "author_id", "caption", "image", "video", "likes_count", "comments_count", "created_at", "updated_at"}

func TestPostRepositoryListNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("ORDER BY created_at DESC, id DESC").WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(2, 1, "second", "b.jpg", "clip.mp4", 0, 0, newer, newer).
			AddRow(1, 1, "first", "a.jpg", nil, 0, 0, older, older))

	posts, total, err := repo.List(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, "clip.mp4", posts[0].Video)
	assert.Equal(t, "", posts[1].Video)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryCreateLike(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO likes").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE posts SET likes_count = likes_count \\+ 1").WithArgs(10).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	like := &model.Like{UserID: 2, PostID: 10}
	require.NoError(t, repo.CreateLike(like))
	assert.Equal(t, 3, like.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryCreateLikeDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO likes").WillReturnError(&gomysql.MySQLError{Number: 1062})
	mock.ExpectRollback()

	err := repo.CreateLike(&model.Like{UserID: 2, PostID: 10})
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyLiked))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryCreateLikeMissingPost(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO likes").WillReturnError(&gomysql.MySQLError{Number: 1452})
	mock.ExpectRollback()

	err := repo.CreateLike(&model.Like{UserID: 2, PostID: 404})
	assert.True(t, apperrors.Is(err, apperrors.ErrPostNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryDeleteLikeNotLiked(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM likes").WithArgs(2, 10).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteLike(2, 10)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectExec("DELETE FROM posts").WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(8)
	assert.True(t, apperrors.Is(err, apperrors.ErrPostNotFound))
}

func TestPostRepositoryReconcileCounters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectExec("UPDATE posts p SET p.likes_count").WillReturnResult(sqlmock.NewResult(0, 3))

	fixed, err := repo.ReconcileCounters()
	require.NoError(t, err)
	assert.Equal(t, int64(3), fixed)
}
