// ABOUTME: Profile state service: the local user record and known-user directory
// ABOUTME: Search matches name, email, role, sport and location, case-insensitively

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/collegia/collegia-core/internal/store"
)

// Service owns the single local user record and a directory of known users.
type Service struct {
	mu        sync.RWMutex
	writer    *store.Writer
	store     store.Store
	logger    *slog.Logger
	user      *User
	directory []*User
	hydrated  bool
}

// NewService creates a profile service persisting to st.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "profile")
	return &Service{
		store:  st,
		writer: store.NewWriter(st, store.BucketProfile, logger),
		logger: logger,
	}
}

// profileState is the persisted bucket document.
type profileState struct {
	User      *User   `json:"user"`
	Directory []*User `json:"allUsers"`
}

// Hydrate loads the persisted profile. Corrupt or unreadable state is logged
// and treated as empty; the service always comes up hydrated.
func (s *Service) Hydrate(ctx context.Context) {
	blob, err := s.store.Get(ctx, store.BucketProfile)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, store.ErrNotFound):
		// First run
	case err != nil:
		s.logger.Error("loading profile state", "error", err)
	default:
		var st profileState
		if uerr := json.Unmarshal(blob, &st); uerr != nil {
			s.logger.Warn("corrupt profile state, starting empty", "error", uerr)
		} else {
			s.user = st.User
			s.directory = st.Directory
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

// SetUser replaces the current user record and remembers it in the
// directory.
func (s *Service) SetUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &u
	s.rememberLocked(&u)
	s.persistLocked()
}

// CurrentUser returns a copy of the current user record, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	return cloneUser(s.user)
}

// UpdateProfile merges the patch into the current user. A no-op when no
// user is set.
func (s *Service) UpdateProfile(patch UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	patch.apply(s.user)
	s.rememberLocked(s.user)
	s.persistLocked()
}

// RememberUser upserts a user into the directory by id.
func (s *Service) RememberUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rememberLocked(&u)
	s.persistLocked()
}

// SearchUsers returns directory entries whose name, email, role, sport or
// location contains the query, case-insensitively. A blank query matches
// nothing.
func (s *Service) SearchUsers(query string) []*User {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, u := range s.directory {
		if strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(string(u.Role)), term) ||
			(u.Sport != "" && strings.Contains(strings.ToLower(u.Sport), term)) ||
			(u.Location != "" && strings.Contains(strings.ToLower(u.Location), term)) {
			out = append(out, cloneUser(u))
		}
	}
	return out
}

// rememberLocked upserts into the directory. Callers must hold s.mu.
func (s *Service) rememberLocked(u *User) {
	c := cloneUser(u)
	for i, existing := range s.directory {
		if existing.ID == u.ID {
			s.directory[i] = c
			return
		}
	}
	s.directory = append(s.directory, c)
}

func cloneUser(u *User) *User {
	c := *u
	c.Achievements = append([]string(nil), u.Achievements...)
	return &c
}

// persistLocked snapshots the profile and schedules a background write.
// Callers must hold s.mu.
func (s *Service) persistLocked() {
	blob, err := json.Marshal(profileState{User: s.user, Directory: s.directory})
	if err != nil {
		s.logger.Error("encoding profile state", "error", err)
		return
	}
	s.writer.Enqueue(blob)
}
