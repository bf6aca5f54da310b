package models

import (
	"time"
)

type Discussion struct {
	ID        string
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Comments  []*Comment
}

// Comment belongs to exactly one discussion and is removed with it.
type Comment struct {
	ID           string
	DiscussionID string
	Content      string
	Author       string
	AuthorEmail  string
	AuthorAvatar string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
