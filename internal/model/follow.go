package model

// Follow 关注关系表 follows，(user_being_followed_id, user_following_id) 为联合主键
type Follow struct {
	UserBeingFollowedID uint64 `db:"user_being_followed_id"`
	UserFollowingID     uint64 `db:"user_following_id"`
}
