package schedule

import (
	"time"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/lesson"
)

// Store collections owned by this package. ActiveCollection is derived from
// Collection and carries no bootstrap document.
const (
	Collection       = "classScheduleLessons"
	ActiveCollection = "activeLessons"
)

type (
	// Entry is a lesson placed on the calendar for a class under an
	// enrollment. Duration is minutes; EndTime is derived from StartTime at
	// creation but kept so the window survives later duration edits.
	Entry struct {
		ID           string    `json:"id"`
		LessonID     string    `json:"lessonId"`
		ModuleID     string    `json:"moduleId"`
		ClassID      string    `json:"classId"`
		EnrollmentID string    `json:"enrollmentId"`
		TeacherID    string    `json:"teacherId"`
		Name         string    `json:"name"`
		Duration     int       `json:"duration"`
		Order        int       `json:"order"`
		StartTime    time.Time `json:"startTime"`
		EndTime      time.Time `json:"endTime,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// ScheduledEntry annotates an Entry with display-formatted instants.
	ScheduledEntry struct {
		Entry
		FormattedStartTime string `json:"formattedStartTime"`
		FormattedEndTime   string `json:"formattedEndTime"`
	}

	// ModuleLessonView is a lesson seen through its module link, carrying the
	// per-module lectured flag.
	ModuleLessonView struct {
		lesson.Lesson
		ModuleID string `json:"moduleId"`
		Lectured bool   `json:"lectured"`
	}
)

func (e Entry) RecordID() string { return e.ID }

// Window returns the entry's active interval; a zero EndTime falls back to
// StartTime plus Duration.
func (e Entry) Window() (start, end time.Time) {
	start = e.StartTime
	end = e.EndTime
	if end.IsZero() {
		end = start.Add(time.Duration(e.Duration) * time.Minute)
	}
	return start, end
}

func (e Entry) annotate() ScheduledEntry {
	start, end := e.Window()
	return ScheduledEntry{
		Entry:              e,
		FormattedStartTime: core.FormatDateTime(start),
		FormattedEndTime:   core.FormatDateTime(end),
	}
}
