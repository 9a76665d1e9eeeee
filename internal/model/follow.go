package model

import "time"

// Follow 关注关系：FollowerID 关注了 FollowingID
type Follow struct {
	ID          int       `json:"id"`
	FollowerID  int       `json:"follower_id"`
	FollowingID int       `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type FollowView struct {
	ID        int          `json:"id"`
	Follower  *UserProfile `json:"follower"`
	Following *UserProfile `json:"following"`
	CreatedAt time.Time    `json:"created_at"`
}
