package model

import "time"

const MaxCaptionLength = 2000

type Post struct {
	ID            int       `json:"id"`
	AuthorID      int       `json:"author_id"`
	Caption       string    `json:"caption"`
	Image         string    `json:"image"`
	Video         string    `json:"video,omitempty"`
	LikesCount    int       `json:"-"`
	CommentsCount int       `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Like struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PostID    int       `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView 帖子的对外表示，计数均为实时统计
type PostView struct {
	ID            int            `json:"id"`
	Author        *UserProfile   `json:"author"`
	Caption       string         `json:"caption"`
	Image         string         `json:"image"`
	Video         *string        `json:"video"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	Comments      []*CommentView `json:"comments"`
	UserLiked     bool           `json:"user_liked"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Pagination 分页信息
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(total, page, pageSize int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Pagination{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
