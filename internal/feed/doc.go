// Package feed owns the post collection of the social feed.
//
// # Overview
//
// Posts are created by the authoring UI, inserted most-recent-first, and
// mutated through a small set of operations:
//
//   - AddPost / UpdatePost (explicit PostPatch merge) / DeletePost
//   - ToggleLike: idempotent like toggling; likes == len(likedBy) always
//   - AddComment / CommentsForPost
//   - TrendingTags: top 10 tags across #hashtags and skill labels
//
// Mutations targeting unknown ids are silent no-ops; callers that need the
// distinction query first (PostByID, IsLikedByUser).
//
// # Persistence
//
// The collection is persisted to the "feed" bucket after every mutation.
// Call Hydrate once at startup; queries before hydration return zero values.
// Timestamps round-trip through their RFC 3339 JSON encoding.
package feed
