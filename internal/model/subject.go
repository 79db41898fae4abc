package model

// SubjectDetail is the per-subject view with per-lesson rankings and
// aggregate counts. Read-only.
type SubjectDetail struct {
	SubjectID                 int64              `json:"subjectId"`
	SubjectName               string             `json:"subjectName"`
	Lessons                   []SubjectLessonRow `json:"lessons"`
	TotalLessonsCount         int                `json:"totalLessonsCount"`
	FinishedLessonsCount      int                `json:"finishedLessonsCount"`
	CanceledLessonsCount      int                `json:"canceledLessonsCount"`
	FutureLessonsCount        int                `json:"futureLessonsCount"`
	FinishedLessonsPercentage float64            `json:"finishedLessonsPercentage"`
	CanceledLessonsPercentage float64            `json:"canceledLessonsPercentage"`
	FutureLessonsPercentage   float64            `json:"futureLessonsPercentage"`
}

type SubjectLessonRow struct {
	TeacherName    string       `json:"teacherName"`
	LessonDateTime string       `json:"lessonDateTime"`
	Status         LessonStatus `json:"status"`
	Ranking        int          `json:"ranking"`
	Feedback       *Feedback    `json:"feedback"`
}

// AverageRanking averages the positive rankings; zero rankings mean the
// lesson was never rated and are excluded.
func (d SubjectDetail) AverageRanking() (float64, bool) {
	sum, n := 0, 0
	for _, l := range d.Lessons {
		if l.Ranking > 0 {
			sum += l.Ranking
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}
