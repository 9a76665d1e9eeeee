package model

import "time"

const MaxCommentLength = 1000

type Comment struct {
	ID         int       `json:"id"`
	AuthorID   int       `json:"author_id"`
	PostID     int       `json:"post_id"`
	Text       string    `json:"text"`
	LikesCount int       `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CommentLike struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CommentID int       `json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView 评论的对外表示
type CommentView struct {
	ID         int          `json:"id"`
	Author     *UserProfile `json:"author"`
	Text       string       `json:"text"`
	LikesCount int          `json:"likes_count"`
	UserLiked  bool         `json:"user_liked"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
