package models

// Weekdays and periods accepted by the timetable, in display order.
var (
	Weekdays = []string{"lundi", "mardi", "mercredi", "jeudi", "vendredi"}
	Periods  = []string{
		"08:00-09:00", "09:00-10:00", "10:00-11:00",
		"11:00-12:00", "14:00-15:00", "15:00-16:00",
	}
)

// ValidWeekday reports whether day is a known timetable day.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ValidPeriod reports whether period is a known timetable period.
func ValidPeriod(period string) bool {
	for _, p := range Periods {
		if p == period {
			return true
		}
	}
	return false
}

// ScheduleSlot is one timetable cell: a subject taught to a class on a given
// weekday and period, unique per (class, weekday, period).
type ScheduleSlot struct {
	ID        string  `db:"id" json:"id"`
	ClassID   string  `db:"class_id" json:"class_id"`
	Weekday   string  `db:"weekday" json:"weekday"`
	Period    string  `db:"period" json:"period"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	RoomID    *string `db:"room_id" json:"room_id,omitempty"`
}

// ScheduleSlotDetail joins a slot with display names.
type ScheduleSlotDetail struct {
	ScheduleSlot
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	RoomName    *string `db:"room_name" json:"room_name,omitempty"`
}

// DaySchedule groups a class's slots under one weekday.
type DaySchedule struct {
	Day   string               `json:"day"`
	Slots []ScheduleSlotDetail `json:"slots"`
}
