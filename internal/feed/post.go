// ABOUTME: Post and Comment entities plus the PostPatch merge type
// ABOUTME: The likes counter is always derived from the liked-by set

package feed

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the kind of account that authored a post.
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// Post is a feed entry. LikedBy is the source of truth for likes;
// Likes is kept equal to len(LikedBy) by the service.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"userId"`
	AuthorName string    `json:"userName"`
	AuthorRole Role      `json:"userRole"`
	Content    string    `json:"content"`
	MediaURL   string    `json:"mediaUrl,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Timestamp  time.Time `json:"timestamp"`
	LikedBy    []string  `json:"likedBy"`
}

// NewPost builds a post with a fresh id and the current time. Enforcing the
// skill-tag limit is the caller's job, same as validating content.
func NewPost(authorID, authorName string, role Role, content string, skills []string) Post {
	return Post{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: authorName,
		AuthorRole: role,
		Content:    content,
		Skills:     skills,
		Timestamp:  time.Now(),
		LikedBy:    []string{},
	}
}

// PostPatch lists the fields a caller may change on an existing post.
// Nil fields are left untouched.
type PostPatch struct {
	Content  *string
	MediaURL *string
	Skills   *[]string
}

// apply merges the patch into p.
func (patch PostPatch) apply(p *Post) {
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.MediaURL != nil {
		p.MediaURL = *patch.MediaURL
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
}

// Comment is a reply to a post. Comments are append-only.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"userId"`
	AuthorName string    `json:"userName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}
