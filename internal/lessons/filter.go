package lessons

import (
	"strconv"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

// AllSubjects is the sentinel selector that accepts every record.
const AllSubjects = "all"

// FilterBySubject keeps lessons whose subject id matches the selector.
// The filter runs on the flat list before grouping (tabular view); the
// calendar view instead groups first and selects an active day key.
func FilterBySubject(items []model.Lesson, selector string) []model.Lesson {
	if selector == "" || selector == AllSubjects {
		return items
	}
	id, err := strconv.ParseInt(selector, 10, 64)
	if err != nil {
		// An unparseable selector matches nothing rather than everything.
		return []model.Lesson{}
	}
	out := make([]model.Lesson, 0, len(items))
	for _, l := range items {
		if l.SubjectID == id {
			out = append(out, l)
		}
	}
	return out
}

// Unrated keeps lessons still awaiting feedback.
func Unrated(items []model.Lesson) []model.Lesson {
	out := make([]model.Lesson, 0, len(items))
	for _, l := range items {
		if !l.Rated() {
			out = append(out, l)
		}
	}
	return out
}
