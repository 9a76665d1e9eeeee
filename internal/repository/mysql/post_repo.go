package mysql

import (
	"database/sql"
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"
	"time"

	"go.uber.org/zap"
)

const postColumns = `id, author_id, caption, image, video, likes_count, comments_count, created_at, updated_at`

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db: db}
}

func scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var video sql.NullString
	err := row.Scan(
		&post.ID, &post.AuthorID, &post.Caption, &post.Image, &video,
		&post.LikesCount, &post.CommentsCount, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Video = video.String
	return &post, nil
}

func (r *postRepository) Create(post *model.Post) error {
	post.CreatedAt = nowIfZero(post.CreatedAt)
	post.UpdatedAt = post.CreatedAt

	query := `INSERT INTO posts (author_id, caption, image, video, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, post.AuthorID, post.Caption, post.Image, nullString(post.Video),
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrUserNotFound, "作者不存在", err)
		}
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return fmt.Errorf("failed to insert post: %w", err)
	}

	postID, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新帖子ID失败", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	post.ID = int(postID)
	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID), zap.Int("author_id", post.AuthorID))
	return nil
}

func (r *postRepository) FindByID(id int) (*model.Post, error) {
	post, err := scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		util.Logger.Error("查询帖子失败", zap.Error(err), zap.Int("post_id", id))
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

// Update 只修改正文与媒体，作者与计数不变
func (r *postRepository) Update(post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(`UPDATE posts SET caption = ?, image = ?, video = ?, updated_at = ? WHERE id = ?`,
		post.Caption, post.Image, nullString(post.Video), post.UpdatedAt, post.ID)
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.Int("post_id", post.ID))
		return fmt.Errorf("failed to update post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// 内容未变化时 MySQL 也返回 0，再确认一次
		var exists bool
		if err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, post.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check post existence: %w", err)
		}
		if !exists {
			return apperrors.New(apperrors.ErrPostNotFound, "帖子不存在")
		}
	}
	return nil
}

// Delete 删除帖子，点赞、评论及相关通知由外键级联删除
func (r *postRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrPostNotFound, "帖子不存在")
	}
	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

func (r *postRepository) List(page, pageSize int) ([]*model.Post, int, error) {
	return r.list(``, page, pageSize)
}

func (r *postRepository) ListByAuthor(authorID, page, pageSize int) ([]*model.Post, int, error) {
	return r.list(`WHERE author_id = ?`, page, pageSize, authorID)
}

// ListFeed 返回用户本人及其关注对象的帖子
func (r *postRepository) ListFeed(userID, page, pageSize int) ([]*model.Post, int, error) {
	where := `WHERE author_id = ? OR author_id IN (SELECT following_id FROM follows WHERE follower_id = ?)`
	return r.list(where, page, pageSize, userID, userID)
}

func (r *postRepository) list(where string, page, pageSize int, args ...interface{}) ([]*model.Post, int, error) {
	limit, offset := offsetOf(page, pageSize)

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		util.Logger.Error("统计帖子数失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts ` + where + `
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		util.Logger.Error("查询帖子列表失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, total, nil
}

// CreateLike 点赞并递增帖子计数，重复点赞返回 ErrAlreadyLiked
func (r *postRepository) CreateLike(like *model.Like) error {
	like.CreatedAt = nowIfZero(like.CreatedAt)

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.PostID, like.CreatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.ErrAlreadyLiked, "已经点赞过该帖子", err)
		}
		if isMissingReference(err) {
			return apperrors.Wrap(apperrors.ErrPostNotFound, "帖子不存在", err)
		}
		util.Logger.Error("点赞失败", zap.Error(err), zap.Int("post_id", like.PostID))
		return fmt.Errorf("failed to insert like: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	like.ID = int(id)

	if _, err := tx.Exec(`UPDATE posts SET likes_count = likes_count + 1 WHERE id = ?`, like.PostID); err != nil {
		util.Logger.Error("更新点赞数失败", zap.Error(err), zap.Int("post_id", like.PostID))
		return fmt.Errorf("failed to increment likes_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postRepository) DeleteLike(userID, postID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		util.Logger.Error("取消点赞失败", zap.Error(err), zap.Int("post_id", postID))
		return fmt.Errorf("failed to delete like: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "尚未点赞该帖子")
	}

	if _, err := tx.Exec(`UPDATE posts SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = ?`, postID); err != nil {
		util.Logger.Error("更新点赞数失败", zap.Error(err), zap.Int("post_id", postID))
		return fmt.Errorf("failed to decrement likes_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postRepository) CountLikes(postID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *postRepository) CountComments(postID int) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *postRepository) IsLikedBy(postID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// ReconcileCounters 按实际行数重算帖子的冗余计数，返回被修正的帖子数
func (r *postRepository) ReconcileCounters() (int64, error) {
	result, err := r.db.Exec(`
		UPDATE posts p
		SET p.likes_count = (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		    p.comments_count = (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)`)
	if err != nil {
		util.Logger.Error("校准帖子计数失败", zap.Error(err))
		return 0, fmt.Errorf("failed to reconcile post counters: %w", err)
	}
	return result.RowsAffected()
}
