package models

import "time"

// Absence records a student missing class on a date, optionally for one
// subject; unique per (student, subject, date). Justification flips the flag
// and records the reason.
type Absence struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SubjectID *string   `db:"subject_id" json:"subject_id,omitempty"`
	Date      time.Time `db:"date" json:"date"`
	Justified bool      `db:"justified" json:"justified"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AbsenceDetail joins an absence with display names.
type AbsenceDetail struct {
	Absence
	StudentName string  `db:"student_name" json:"student_name"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
}
