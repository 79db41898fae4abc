package lessons

import (
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

// Flatten traverses the nested subject groups and produces a flat ordered
// lesson list, copying the owning subject's id and name onto each lesson.
// Order is the server's: subjects in response order, lessons in subject
// order.
func Flatten(subjects []model.SubjectLessons) []model.Lesson {
	var out []model.Lesson
	for _, subject := range subjects {
		for _, lesson := range subject.Lessons {
			lesson.SubjectID = subject.SubjectID
			lesson.SubjectName = subject.SubjectName
			out = append(out, lesson)
		}
	}
	return out
}
