package models

import "time"

// AssignmentKind distinguishes homework hand-outs from exam subjects.
type AssignmentKind string

const (
	AssignmentHomework AssignmentKind = "homework"
	AssignmentExam     AssignmentKind = "exam"
)

// Assignment statuses derived from the deadline.
const (
	AssignmentOpen   = "open"
	AssignmentClosed = "closed"
)

// Assignment is a hand-out published to a class, optionally with an uploaded
// file stored in the media directory.
type Assignment struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description,omitempty"`
	ClassID     string         `db:"class_id" json:"class_id"`
	SubjectID   string         `db:"subject_id" json:"subject_id"`
	Kind        AssignmentKind `db:"kind" json:"kind"`
	FilePath    *string        `db:"file_path" json:"file_path,omitempty"`
	Deadline    *time.Time     `db:"deadline" json:"deadline,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Status derives open/closed from the deadline at the given instant.
func (a *Assignment) Status(now time.Time) string {
	if a.Deadline != nil && !now.Before(*a.Deadline) {
		return AssignmentClosed
	}
	return AssignmentOpen
}
