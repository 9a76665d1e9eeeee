package mysql

import (
	"database/sql"
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

const commentColumns = `id, author_id, post_id, text, likes_count, created_at, updated_at`

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{db: db}
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var comment model.Comment
	err := row.Scan(&comment.ID, &comment.AuthorID, &comment.PostID, &comment.Text,
		&comment.LikesCount, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Create 写入评论并递增帖子的评论数
func (r *commentRepository) Create(comment *model.Comment) error {
	comment.CreatedAt = nowIfZero(comment.CreatedAt)
	comment.UpdatedAt = comment.CreatedAt

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO comments (author_id, post_id, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.AuthorID, comment.PostID, comment.Text, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrPostNotFound, "帖子不存在", err)
		}
		util.Logger.Error("创建评论失败", zap.Error(err), zap.Int("post_id", comment.PostID))
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = int(id)

	if _, err := tx.Exec(`UPDATE posts SET comments_count = comments_count + 1 WHERE id = ?`, comment.PostID); err != nil {
		util.Logger.Error("更新评论数失败", zap.Error(err), zap.Int("post_id", comment.PostID))
		return fmt.Errorf("failed to increment comments_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	util.Logger.Info("评论创建成功", zap.Int("comment_id", comment.ID), zap.Int("post_id", comment.PostID))
	return nil
}

func (r *commentRepository) FindByID(id int) (*model.Comment, error) {
	comment, err := scanComment(r.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		util.Logger.Error("查询评论失败", zap.Error(err), zap.Int("comment_id", id))
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	return comment, nil
}

// ListByPost 按时间正序返回帖子的评论
func (r *commentRepository) ListByPost(postID, page, pageSize int) ([]*model.Comment, int, error) {
	limit, offset := offsetOf(page, pageSize)

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	rows, err := r.db.Query(`SELECT `+commentColumns+` FROM comments WHERE post_id = ?
		ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`, postID, limit, offset)
	if err != nil {
		util.Logger.Error("查询评论列表失败", zap.Error(err), zap.Int("post_id", postID))
		return nil, 0, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, total, nil
}

// Delete 删除评论并递减帖子的评论数
func (r *commentRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var postID int
	err = tx.QueryRow(`SELECT post_id FROM comments WHERE id = ? FOR UPDATE`, id).Scan(&postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.New(apperrors.ErrCommentNotFound, "评论不存在")
		}
		return fmt.Errorf("failed to lock comment: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM comments WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.Int("comment_id", id))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if _, err := tx.Exec(`UPDATE posts SET comments_count = GREATEST(comments_count - 1, 0) WHERE id = ?`, postID); err != nil {
		util.Logger.Error("更新评论数失败", zap.Error(err), zap.Int("post_id", postID))
		return fmt.Errorf("failed to decrement comments_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	util.Logger.Info("评论删除成功", zap.Int("comment_id", id))
	return nil
}

// CreateLike 评论点赞，(user, comment) 唯一
func (r *commentRepository) CreateLike(like *model.CommentLike) error {
	like.CreatedAt = nowIfZero(like.CreatedAt)

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO comment_likes (user_id, comment_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.CommentID, like.CreatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.ErrAlreadyLiked, "已经点赞过该评论", err)
		}
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrCommentNotFound, "评论不存在", err)
		}
		util.Logger.Error("评论点赞失败", zap.Error(err), zap.Int("comment_id", like.CommentID))
		return fmt.Errorf("failed to insert comment like: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	like.ID = int(id)

	if _, err := tx.Exec(`UPDATE comments SET likes_count = likes_count + 1 WHERE id = ?`, like.CommentID); err != nil {
		return fmt.Errorf("failed to increment likes_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *commentRepository) DeleteLike(userID, commentID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM comment_likes WHERE user_id = ? AND comment_id = ?`, userID, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment like: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "尚未点赞该评论")
	}

	if _, err := tx.Exec(`UPDATE comments SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = ?`, commentID); err != nil {
		return fmt.Errorf("failed to decrement likes_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *commentRepository) CountLikes(commentID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, commentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comment likes: %w", err)
	}
	return count, nil
}

func (r *commentRepository) IsLikedBy(commentID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = ? AND user_id = ?)`,
		commentID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check comment like: %w", err)
	}
	return exists, nil
}

func (r *commentRepository) ReconcileCounters() (int64, error) {
	result, err := r.db.Exec(`
		UPDATE comments c
		SET c.likes_count = (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id)`)
	if err != nil {
		util.Logger.Error("校准评论计数失败", zap.Error(err))
		return 0, fmt.Errorf("failed to reconcile comment counters: %w", err)
	}
	return result.RowsAffected()
}
