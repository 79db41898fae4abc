// Package export writes fetched portal data into an Excel workbook for
// offline use.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/lessons"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

const (
	scheduleSheet = "Schedule"
	lessonsSheet  = "Finished lessons"
)

// WriteWorkbook renders the schedule grouped by day plus the flattened
// finished-lesson list, and saves the workbook at path.
func WriteWorkbook(path string, schedule []model.ScheduleEntry, subjects []model.SubjectLessons) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSchedule(f, schedule); err != nil {
		return err
	}
	if err := writeLessons(f, lessons.Flatten(subjects)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSchedule(f *excelize.File, entries []model.ScheduleEntry) error {
	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return err
	}

	headers := []string{"Date", "Pair", "Time", "Subject", "Type", "Room", "Building", "Group"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(scheduleSheet, cell, h); err != nil {
			return err
		}
	}

	groups := lessons.GroupBy(entries, lessons.ScheduleDay)
	lessons.SortChronological(groups)

	row := 2
	for _, day := range groups {
		for _, e := range day.Items {
			values := []interface{}{
				day.Key,
				e.LessonPairName,
				fmt.Sprintf("%s - %s", e.StartTime, e.EndTime),
				e.SubjectName,
				e.TrainingTypeName,
				e.RoomName,
				e.BuildingName,
				e.GroupName,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(scheduleSheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}

	return f.SetColWidth(scheduleSheet, "A", "H", 18)
}

func writeLessons(f *excelize.File, flat []model.Lesson) error {
	if _, err := f.NewSheet(lessonsSheet); err != nil {
		return err
	}

	headers := []string{"Subject", "Teacher", "Started", "Ended", "Delay (s)", "Rating", "Comment"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(lessonsSheet, cell, h); err != nil {
			return err
		}
	}

	for i, l := range flat {
		rating := ""
		comment := ""
		if l.Feedback != nil {
			rating = fmt.Sprintf("%d/5", l.Feedback.Rating)
			comment = l.Feedback.Comment
		}
		values := []interface{}{
			l.SubjectName,
			l.TeacherName,
			l.StartedAt.Format(time.DateTime),
			l.EndedAt.Format(time.DateTime),
			l.DelayInSeconds,
			rating,
			comment,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(lessonsSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(lessonsSheet, "A", "G", 20)
}
