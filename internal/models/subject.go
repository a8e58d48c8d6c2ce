package models

import "time"

// Unit is a teaching unit grouping related subjects; transcripts merge a
// unit's subjects into one block.
type Unit struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Subject is taught by one teacher to one class, optionally under a unit.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	UnitID    *string   `db:"unit_id" json:"unit_id,omitempty"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail joins a subject with its display names.
type SubjectDetail struct {
	Subject
	UnitName    *string `db:"unit_name" json:"unit_name,omitempty"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	ClassLevel  string  `db:"class_level" json:"class_level"`
}

// Room is a physical classroom.
type Room struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Active      bool   `db:"active" json:"active"`
}
