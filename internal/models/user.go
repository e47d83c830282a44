package models

import "time"

type User struct {
	Wallet    string    `json:"wallet" gorm:"primaryKey;size:64"`
	Username  *string   `json:"username" gorm:"uniqueIndex;size:32"`
	Bio       string    `json:"bio" gorm:"type:text"`
	AvatarURL string    `json:"avatarUrl" gorm:"size:512"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserStats are aggregates computed on read, never stored.
type UserStats struct {
	DaresCreated    int64 `json:"daresCreated"`
	BetsPlaced      int64 `json:"betsPlaced"`
	ProofsSubmitted int64 `json:"proofsSubmitted"`
}

type UserProfile struct {
	User
	Stats UserStats `json:"stats"`
}
