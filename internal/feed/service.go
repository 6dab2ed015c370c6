// ABOUTME: Feed state service: post collection, like toggling, comments
// ABOUTME: Mutations are silent no-ops for unknown ids; callers query first if they care

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collegia/collegia-core/internal/store"
)

// Service owns the post collection. Posts are kept most-recent-first;
// AddPost inserts at the head.
type Service struct {
	mu       sync.RWMutex
	writer   *store.Writer
	store    store.Store
	logger   *slog.Logger
	posts    []*Post
	comments []*Comment
	hydrated bool
}

// NewService creates a feed service persisting to st.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "feed")
	return &Service{
		store:  st,
		writer: store.NewWriter(st, store.BucketFeed, logger),
		logger: logger,
	}
}

// feedState is the persisted bucket document.
type feedState struct {
	Posts    []*Post    `json:"posts"`
	Comments []*Comment `json:"comments,omitempty"`
}

// Hydrate loads persisted posts and comments. Corrupt or unreadable state is
// logged and treated as empty; the service always comes up hydrated.
func (s *Service) Hydrate(ctx context.Context) {
	blob, err := s.store.Get(ctx, store.BucketFeed)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, store.ErrNotFound):
		// First run
	case err != nil:
		s.logger.Error("loading feed state", "error", err)
	default:
		var st feedState
		if uerr := json.Unmarshal(blob, &st); uerr != nil {
			s.logger.Warn("corrupt feed state, starting empty", "error", uerr)
		} else {
			s.posts = st.Posts
			s.comments = st.Comments
		}
	}
	s.hydrated = true
}

// Hydrated reports whether Hydrate has completed.
func (s *Service) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Close flushes pending persistence writes.
func (s *Service) Close() {
	s.writer.Close()
}

// SetPosts replaces the whole collection, e.g. when seeding demo content.
func (s *Service) SetPosts(posts []Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make([]*Post, 0, len(posts))
	for i := range posts {
		p := posts[i]
		if p.LikedBy == nil {
			p.LikedBy = []string{}
		}
		p.Likes = len(p.LikedBy)
		s.posts = append(s.posts, &p)
	}
	s.persistLocked()
}

// AddPost inserts a post at the head of the feed. Id uniqueness is the
// caller's responsibility.
func (s *Service) AddPost(p Post) {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	p.Likes = len(p.LikedBy)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append([]*Post{&p}, s.posts...)
	s.persistLocked()
}

// UpdatePost merges the patch into the identified post. Unknown ids are a
// no-op.
func (s *Service) UpdatePost(postID string, patch PostPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(postID)
	if p == nil {
		return
	}
	patch.apply(p)
	s.persistLocked()
}

// DeletePost removes the identified post. Unknown ids are a no-op.
func (s *Service) DeletePost(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// ToggleLike adds userID to the post's liked-by set, or removes it if
// already present, and recomputes the like count. Toggling twice restores
// the original state. Unknown post ids are a no-op.
func (s *Service) ToggleLike(postID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(postID)
	if p == nil {
		return
	}

	liked := false
	for i, id := range p.LikedBy {
		if id == userID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			liked = true
			break
		}
	}
	if !liked {
		p.LikedBy = append(p.LikedBy, userID)
	}
	p.Likes = len(p.LikedBy)
	s.persistLocked()
}

// IsLikedByUser reports whether userID has liked the identified post.
func (s *Service) IsLikedByUser(postID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findLocked(postID)
	if p == nil {
		return false
	}
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// PostByID returns a copy of the identified post, or nil.
func (s *Service) PostByID(postID string) *Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findLocked(postID)
	if p == nil {
		return nil
	}
	return clonePost(p)
}

// Posts returns a copy of the feed, most recent first.
func (s *Service) Posts() []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	return out
}

// AddComment appends a comment to the identified post and bumps its comment
// count. Unknown post ids are a no-op. Returns a copy of the new comment,
// or nil.
func (s *Service) AddComment(postID, authorID, authorName, content string) *Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(postID)
	if p == nil {
		return nil
	}

	c := &Comment{
		ID:         uuid.New().String(),
		PostID:     postID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		Timestamp:  time.Now(),
	}
	s.comments = append(s.comments, c)
	p.Comments++
	s.persistLocked()

	out := *c
	return &out
}

// CommentsForPost returns copies of the post's comments, oldest first.
func (s *Service) CommentsForPost(postID string) []*Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// findLocked returns the stored post, or nil. Callers must hold s.mu.
func (s *Service) findLocked(postID string) *Post {
	for _, p := range s.posts {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

func clonePost(p *Post) *Post {
	c := *p
	c.LikedBy = append([]string(nil), p.LikedBy...)
	c.Skills = append([]string(nil), p.Skills...)
	return &c
}

// persistLocked snapshots the collections and schedules a background write.
// Callers must hold s.mu.
func (s *Service) persistLocked() {
	blob, err := json.Marshal(feedState{Posts: s.posts, Comments: s.comments})
	if err != nil {
		s.logger.Error("encoding feed state", "error", err)
		return
	}
	s.writer.Enqueue(blob)
}
