package mysql

import (
	"database/sql"
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

type followRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *followRepository {
	return &followRepository{db: db}
}

// Create 建立关注关系并更新双方的计数
func (r *followRepository) Create(follow *model.Follow) error {
	follow.CreatedAt = nowIfZero(follow.CreatedAt)

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		follow.FollowerID, follow.FollowingID, follow.CreatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.ErrAlreadyFollowing, "已经关注了该用户", err)
		}
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrUserNotFound, "用户不存在", err)
		}
		util.Logger.Error("创建关注关系失败", zap.Error(err))
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	follow.ID = int(id)

	if _, err := tx.Exec(`UPDATE users SET following_count = following_count + 1 WHERE id = ?`, follow.FollowerID); err != nil {
		return fmt.Errorf("failed to increment following_count: %w", err)
	}
	if _, err := tx.Exec(`UPDATE users SET followers_count = followers_count + 1 WHERE id = ?`, follow.FollowingID); err != nil {
		return fmt.Errorf("failed to increment followers_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	util.Logger.Info("关注成功",
		zap.Int("follower_id", follow.FollowerID),
		zap.Int("following_id", follow.FollowingID))
	return nil
}

func (r *followRepository) Delete(followerID, followingID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID)
	if err != nil {
		util.Logger.Error("取消关注失败", zap.Error(err))
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "尚未关注该用户")
	}

	if _, err := tx.Exec(`UPDATE users SET following_count = GREATEST(following_count - 1, 0) WHERE id = ?`, followerID); err != nil {
		return fmt.Errorf("failed to decrement following_count: %w", err)
	}
	if _, err := tx.Exec(`UPDATE users SET followers_count = GREATEST(followers_count - 1, 0) WHERE id = ?`, followingID); err != nil {
		return fmt.Errorf("failed to decrement followers_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	util.Logger.Info("取消关注成功",
		zap.Int("follower_id", followerID),
		zap.Int("following_id", followingID))
	return nil
}

func (r *followRepository) Exists(followerID, followingID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *followRepository) CountFollowers(userID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE following_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(userID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

// ListFollowers 关注了 userID 的记录
func (r *followRepository) ListFollowers(userID, page, pageSize int) ([]*model.Follow, int, error) {
	return r.list(`following_id = ?`, userID, page, pageSize)
}

// ListFollowing userID 关注的记录
func (r *followRepository) ListFollowing(userID, page, pageSize int) ([]*model.Follow, int, error) {
	return r.list(`follower_id = ?`, userID, page, pageSize)
}

func (r *followRepository) list(cond string, userID, page, pageSize int) ([]*model.Follow, int, error) {
	limit, offset := offsetOf(page, pageSize)

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE `+cond, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count follows: %w", err)
	}

	rows, err := r.db.Query(`SELECT id, follower_id, following_id, created_at FROM follows WHERE `+cond+`
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		util.Logger.Error("查询关注列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, 0, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	follows := make([]*model.Follow, 0)
	for rows.Next() {
		var f model.Follow
		if err := rows.Scan(&f.ID, &f.FollowerID, &f.FollowingID, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan follow: %w", err)
		}
		follows = append(follows, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate follows: %w", err)
	}
	return follows, total, nil
}

func (r *followRepository) ReconcileCounters() (int64, error) {
	result, err := r.db.Exec(`
		UPDATE users u
		SET u.followers_count = (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id),
		    u.following_count = (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)`)
	if err != nil {
		util.Logger.Error("校准关注计数失败", zap.Error(err))
		return 0, fmt.Errorf("failed to reconcile follow counters: %w", err)
	}
	return result.RowsAffected()
}
