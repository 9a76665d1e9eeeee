package mysql

import (
	"database/sql"
	"fmt"
	"lake-backend/internal/util"

	"go.uber.org/zap"
)

// 唯一约束与级联删除由数据库保证
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL,
		email VARCHAR(254) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		bio VARCHAR(500) NOT NULL DEFAULT '',
		profile_picture VARCHAR(512) NOT NULL DEFAULT '',
		cover_photo VARCHAR(512) NOT NULL DEFAULT '',
		followers_count INT NOT NULL DEFAULT 0,
		following_count INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uniq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS posts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		author_id INT NOT NULL,
		caption VARCHAR(2000) NOT NULL DEFAULT '',
		image VARCHAR(512) NOT NULL,
		video VARCHAR(512) NULL,
		likes_count INT NOT NULL DEFAULT 0,
		comments_count INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_posts_author_created (author_id, created_at),
		CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS follows (
		id INT AUTO_INCREMENT PRIMARY KEY,
		follower_id INT NOT NULL,
		following_id INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uniq_follows_pair (follower_id, following_id),
		KEY idx_follows_following (following_id),
		CONSTRAINT fk_follows_follower FOREIGN KEY (follower_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_follows_following FOREIGN KEY (following_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS likes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		post_id INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uniq_likes_pair (user_id, post_id),
		KEY idx_likes_post (post_id),
		CONSTRAINT fk_likes_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_likes_post FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id INT AUTO_INCREMENT PRIMARY KEY,
		author_id INT NOT NULL,
		post_id INT NOT NULL,
		text VARCHAR(1000) NOT NULL,
		likes_count INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		KEY idx_comments_post_created (post_id, created_at),
		CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_post FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comment_likes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		comment_id INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uniq_comment_likes_pair (user_id, comment_id),
		KEY idx_comment_likes_comment (comment_id),
		CONSTRAINT fk_comment_likes_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_comment_likes_comment FOREIGN KEY (comment_id) REFERENCES comments (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id INT AUTO_INCREMENT PRIMARY KEY,
		recipient_id INT NOT NULL,
		sender_id INT NOT NULL,
		notification_type ENUM('like', 'comment', 'follow') NOT NULL,
		post_id INT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL,
		KEY idx_notifications_recipient_created (recipient_id, created_at),
		CONSTRAINT fk_notifications_recipient FOREIGN KEY (recipient_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_notifications_sender FOREIGN KEY (sender_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_notifications_post FOREIGN KEY (post_id) REFERENCES posts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema 创建缺失的数据表
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			util.Logger.Error("创建数据表失败", zap.Error(err))
			return fmt.Errorf("创建数据表失败: %w", err)
		}
	}
	util.Logger.Info("数据表检查完成", zap.Int("tables", len(schemaStatements)))
	return nil
}
