package mysql

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "bio",
	"profile_picture", "cover_photo", "followers_count", "following_count", "created_at", "updated_at"}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	user := &model.User{Username: gofakeit.Username(), Email: gofakeit.Email(), PasswordHash: "hash"}
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(7, 1))

	require.NoError(t, repo.Create(user))
	assert.Equal(t, 7, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(&model.User{Username: "alice"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUserExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "alice", "a@example.com", "hash", "Alice", "Liddell", "", "", "", 3, 2, now, now))

	user, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 3, user.FollowersCount)

	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	user, err = repo.FindByUsername("nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteAdjustsCounters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users u JOIN follows f ON f.following_id = u.id").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE users u JOIN follows f ON f.follower_id = u.id").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE posts p JOIN likes l").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("UPDATE posts p JOIN").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE comments c JOIN comment_likes cl").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users WHERE id").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	for i := 0; i < 5; i++ {
		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM users WHERE id").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(9)
	assert.True(t, apperrors.Is(err, apperrors.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySearchEscapesWildcards(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	pattern := `%a\_b%`
	mock.ExpectQuery("SELECT COUNT").WithArgs(pattern, pattern, pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY username ASC").WithArgs(pattern, pattern, pattern, 10, 0).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, total, err := repo.Search("a_b", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
