package models

import (
	"time"
)

// LevelComment is a comment attached to a game level, identified by a free-form
// level key such as "LEVEL_CLIENT_SERVER".
type LevelComment struct {
	ID           string
	LevelID      string
	Content      string
	Author       string
	AuthorEmail  string
	AuthorAvatar string
	UserID       *string // set when AuthorEmail matches a registered user
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
