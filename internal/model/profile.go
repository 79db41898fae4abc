package model

type Profile struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	GroupName     string `json:"groupName"`
	FacultyName   string `json:"facultyName"`
	SpecialtyName string `json:"specialtyName"`
	Level         string `json:"level"`
	ImageURL      string `json:"imageUrl"`
}

// LessonStatistics is the aggregate load view for a date interval.
type LessonStatistics struct {
	LessonCountForCurrentYear                  int                `json:"lessonCountForCurrentYear"`
	LessonCountForInterval                     int                `json:"lessonCountForInterval"`
	FinishedLessonCount                        int                `json:"finishedLessonCount"`
	CanceledLessonCount                        int                `json:"canceledLessonCount"`
	LessonsLateTime                            int64              `json:"lessonsLateTime"`
	FinishedLessonLoadPercentageForInterval    float64            `json:"finishedLessonLoadPercentageForInterval"`
	FinishedLessonLoadPercentageForCurrentYear float64            `json:"finishedLessonLoadPercentageForCurrentYear"`
	Subjects                                   []SubjectStatistic `json:"subjects"`
}

type SubjectStatistic struct {
	SubjectID           int64   `json:"subjectId"`
	SubjectName         string  `json:"subjectName"`
	AverageRating       float64 `json:"averageRating"`
	LessonCount         int     `json:"lessonCount"`
	FinishedLessonCount int     `json:"finishedLessonCount"`
	CanceledLessonCount int     `json:"canceledLessonCount"`
}

type StatisticsQuery struct {
	StartDate string
	EndDate   string
	Page      int
	Size      int
}
