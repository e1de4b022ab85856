package activity

import (
	"errors"
	"strings"
	"time"
)

// Comment length bound enforced client-side before submission.
const MaxCommentLength = 500

// Comment errors
var (
	ErrEmptyComment   = errors.New("comment content cannot be empty")
	ErrCommentTooLong = errors.New("comment cannot exceed 500 characters")
)

// Comment is a user's comment on an activity, delivered embedded in the
// activity detail response.
type Comment struct {
	ID        int64
	UserID    int64
	UserName  string
	Content   string
	CreatedAt time.Time
}

// Detail is the full activity view: the activity plus its comments.
type Detail struct {
	Activity Activity
	Comments []Comment
}

// ValidateCommentContent checks a comment draft before it is submitted.
// POST: Returns nil if the content may be sent, error otherwise
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyComment
	}
	if len([]rune(content)) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
