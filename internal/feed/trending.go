// ABOUTME: Trending tag ranking across the whole feed
// ABOUTME: Counts every #word occurrence in content plus every skill tag entry

package feed

import (
	"regexp"
	"sort"
	"strings"
)

// hashtagPattern matches #word occurrences inside post content.
var hashtagPattern = regexp.MustCompile(`#\w+`)

// TagCount is one trending entry.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// trendingLimit caps the trending list at the top entries.
const trendingLimit = 10

// TrendingTags scans every post and ranks tags by occurrence. Each #word in
// the content counts once per occurrence (a post repeating a tag contributes
// each repeat), and each skill tag entry counts once. Tags are lowercased.
// Equal counts order by tag ascending so the ranking is deterministic.
func (s *Service) TrendingTags() []TagCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.posts {
		for _, hashtag := range hashtagPattern.FindAllString(p.Content, -1) {
			tag := strings.ToLower(strings.TrimPrefix(hashtag, "#"))
			counts[tag]++
		}
		for _, skill := range p.Skills {
			counts[strings.ToLower(skill)]++
		}
	}

	ranked := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		ranked = append(ranked, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})

	if len(ranked) > trendingLimit {
		ranked = ranked[:trendingLimit]
	}
	return ranked
}
