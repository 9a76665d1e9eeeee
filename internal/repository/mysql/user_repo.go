package mysql

import (
	"database/sql"
	"fmt"
	apperrors "lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/util"
	"strings"
	"time"

	"go.uber.org/zap"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, bio,
	profile_picture, cover_photo, followers_count, following_count, created_at, updated_at`

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Bio, &user.ProfilePicture, &user.CoverPhoto, &user.FollowersCount, &user.FollowingCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建一个新用户，用户名重复时返回 ErrUserExists
func (r *userRepository) Create(user *model.User) error {
	util.Logger.Info("尝试创建新用户", zap.String("username", user.Username))
	user.CreatedAt = nowIfZero(user.CreatedAt)
	user.UpdatedAt = user.CreatedAt

	query := `INSERT INTO users (username, email, password_hash, first_name, last_name, bio,
              profile_picture, cover_photo, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Bio,
		user.ProfilePicture, user.CoverPhoto, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			util.Logger.Warn("用户名已存在", zap.String("username", user.Username))
			return apperrors.Wrap(apperrors.ErrUserExists, "用户名已存在", err)
		}
		util.Logger.Error("创建用户失败", zap.Error(err))
		return fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY id LIMIT 1`, email)
}

func (r *userRepository) findOne(query string, arg interface{}) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		util.Logger.Error("查找用户失败", zap.Error(err))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Update 更新用户资料，计数字段不在此处修改
func (r *userRepository) Update(user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?, bio = ?,
		    profile_picture = ?, cover_photo = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio,
		user.ProfilePicture, user.CoverPhoto, user.UpdatedAt, user.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.ErrUserExists, "用户名已存在", err)
		}
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete 删除用户，依赖记录由外键级联删除；
// 删除前先修正其他用户、帖子和评论上的冗余计数
func (r *userRepository) Delete(id int) error {
	util.Logger.Info("开始删除用户", zap.Int("user_id", id))

	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counterFixes := []string{
		// 被该用户关注的人
		`UPDATE users u JOIN follows f ON f.following_id = u.id
		 SET u.followers_count = GREATEST(u.followers_count - 1, 0)
		 WHERE f.follower_id = ?`,
		// 关注该用户的人
		`UPDATE users u JOIN follows f ON f.follower_id = u.id
		 SET u.following_count = GREATEST(u.following_count - 1, 0)
		 WHERE f.following_id = ?`,
		`UPDATE posts p JOIN likes l ON l.post_id = p.id
		 SET p.likes_count = GREATEST(p.likes_count - 1, 0)
		 WHERE l.user_id = ?`,
		`UPDATE posts p JOIN (
		     SELECT post_id, COUNT(*) AS n FROM comments WHERE author_id = ? GROUP BY post_id
		 ) c ON c.post_id = p.id
		 SET p.comments_count = GREATEST(p.comments_count - c.n, 0)`,
		`UPDATE comments c JOIN comment_likes cl ON cl.comment_id = c.id
		 SET c.likes_count = GREATEST(c.likes_count - 1, 0)
		 WHERE cl.user_id = ?`,
	}
	for _, stmt := range counterFixes {
		if _, err := tx.Exec(stmt, id); err != nil {
			util.Logger.Error("修正计数失败", zap.Error(err), zap.Int("user_id", id))
			return fmt.Errorf("failed to adjust counters: %w", err)
		}
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrUserNotFound, "用户不存在")
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	util.Logger.Info("用户删除成功", zap.Int("user_id", id))
	return nil
}

// Search 按用户名或姓名模糊搜索
func (r *userRepository) Search(keyword string, page, pageSize int) ([]*model.User, int, error) {
	limit, offset := offsetOf(page, pageSize)
	pattern := "%" + escapeLike(keyword) + "%"
	where := `WHERE username LIKE ? OR first_name LIKE ? OR last_name LIKE ?`

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users `+where, pattern, pattern, pattern).Scan(&total); err != nil {
		util.Logger.Error("统计用户数失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.Query(`SELECT `+userColumns+` FROM users `+where+`
		ORDER BY username ASC, id ASC LIMIT ? OFFSET ?`, pattern, pattern, pattern, limit, offset)
	if err != nil {
		util.Logger.Error("搜索用户失败", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
