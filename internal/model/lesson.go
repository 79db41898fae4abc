package model

import "time"

type LessonStatus string

const (
	LessonStatusFinished LessonStatus = "FINISHED"
	LessonStatusCanceled LessonStatus = "CANCELED"
)

// Lesson is one finished lesson session. Fetched read-only; the only
// client-side mutation is attaching Feedback after a successful submission.
type Lesson struct {
	ID             int64     `json:"id"`
	SubjectID      int64     `json:"subjectId"`
	SubjectName    string    `json:"subjectName"`
	TeacherName    string    `json:"teacherName"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
	DelayInSeconds int       `json:"delayInSeconds"`
	Feedback       *Feedback `json:"feedback"`
}

// Rated reports whether the lesson already carries feedback; rated lessons
// are immutable.
func (l Lesson) Rated() bool {
	return l.Feedback != nil
}

type Feedback struct {
	ID              int64     `json:"id"`
	LessonSessionID int64     `json:"lessonSessionId"`
	Comment         string    `json:"comment"`
	Rating          int       `json:"rating"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SubjectLessons is the nested subject→lessons shape returned by the
// finished-lesson endpoint.
type SubjectLessons struct {
	SubjectID   int64    `json:"subjectId"`
	SubjectName string   `json:"subjectName"`
	Lessons     []Lesson `json:"lessons"`
}

type SubjectOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
