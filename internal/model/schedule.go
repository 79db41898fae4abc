package model

import "time"

// ScheduleEntry is one row of the weekly schedule. LessonDate is unix
// seconds; the calendar day derived from it is the grouping key.
type ScheduleEntry struct {
	ID                string `json:"id"`
	SubjectName       string `json:"subjectName"`
	LessonDate        int64  `json:"lessonDate"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	GroupName         string `json:"groupName"`
	RoomName          string `json:"roomName"`
	BuildingName      string `json:"buildingName"`
	TrainingTypeName  string `json:"trainingTypeName"`
	SemesterName      string `json:"semesterName"`
	EducationYearCode string `json:"educationYearCode"`
	EducationYearName string `json:"educationYearName"`
	LessonPairCode    string `json:"lessonPairCode"`
	LessonPairName    string `json:"lessonPairName"`
}

// Day returns the entry's calendar date in sortable YYYY-MM-DD form.
func (e ScheduleEntry) Day() string {
	return time.Unix(e.LessonDate, 0).UTC().Format("2006-01-02")
}

// SchedulePage is the paged container the schedule endpoint wraps entries in.
type SchedulePage struct {
	Content       []ScheduleEntry `json:"content"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Number        int             `json:"number"`
}

type ScheduleQuery struct {
	Size int
	Page int // 1-based; translated to the backend's 0-based origin
	Time string
}

const (
	ScheduleTimeWeek  = "WEEK"
	ScheduleTimeToday = "TODAY"
)
