package model

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// TagModeAny 任一標籤符合即可；其他值（包含大小寫不同的 "ANY"）一律視為全部符合
const TagModeAny = "any"

// EventFilter 公開的活動搜尋條件
type EventFilter struct {
	City     string
	Category string
	Tags     []string
	TagMode  string
}

// EventQuery 是 repository 層的查詢條件
type EventQuery struct {
	EventFilter
	HostID           *uuid.UUID
	ParticipantID    *uuid.UUID
	WithJoinRequests bool
}

// MatchAnyTag reports whether the filter uses "any" semantics.
func (f EventFilter) MatchAnyTag() bool {
	return f.TagMode == TagModeAny
}

// NormalizedTags lowercases and trims the filter tags.
func (f EventFilter) NormalizedTags() []string {
	tags := NormalizeTags(f.Tags)
	for i, tag := range tags {
		tags[i] = strings.ToLower(tag)
	}
	return tags
}

// Matches evaluates the query in memory. The Postgres repository expresses
// the same rules in SQL.
func (q EventQuery) Matches(e *Event) bool {
	if q.HostID != nil && e.HostID != *q.HostID {
		return false
	}
	if q.ParticipantID != nil && !e.IsParticipant(*q.ParticipantID) {
		return false
	}
	if q.WithJoinRequests && len(e.JoinRequests) == 0 {
		return false
	}
	if city := strings.TrimSpace(q.City); city != "" &&
		!strings.Contains(strings.ToLower(e.City), strings.ToLower(city)) {
		return false
	}
	if category := strings.TrimSpace(q.Category); category != "" &&
		!strings.EqualFold(string(e.Category), category) {
		return false
	}
	return matchTags(e.Tags, q.NormalizedTags(), q.MatchAnyTag())
}

func matchTags(eventTags, wanted []string, matchAny bool) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(eventTags))
	for _, tag := range eventTags {
		have[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	for _, tag := range wanted {
		_, ok := have[tag]
		if matchAny && ok {
			return true
		}
		if !matchAny && !ok {
			return false
		}
	}
	return !matchAny
}

// SortEvents 依日期遞增，同日期時較新建立者在前，最後以 id 排序
func SortEvents(events []*Event) {
	slices.SortStableFunc(events, func(a, b *Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
