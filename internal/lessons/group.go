package lessons

import (
	"sort"
	"time"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

// Group buckets records by key, preserving first-seen key order and the
// original relative order within each bucket.
type Group[T any] struct {
	Key   string
	Items []T
}

func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// SortChronological orders groups by key. Keys are sortable YYYY-MM-DD
// strings, so plain lexicographic comparison is chronological; locale
// rules never apply.
func SortChronological[T any](groups []Group[T]) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
}

// SelectKey returns the bucket for key, or nil when the key has no
// records (the calendar view renders an empty day).
func SelectKey[T any](groups []Group[T], key string) []T {
	for _, g := range groups {
		if g.Key == key {
			return g.Items
		}
	}
	return nil
}

// DayKey derives the calendar-date grouping key from unix seconds.
func DayKey(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format("2006-01-02")
}

// LessonDay groups finished lessons by the calendar day they started.
func LessonDay(l model.Lesson) string {
	return l.StartedAt.UTC().Format("2006-01-02")
}

// ScheduleDay groups schedule entries by calendar day.
func ScheduleDay(e model.ScheduleEntry) string {
	return DayKey(e.LessonDate)
}
