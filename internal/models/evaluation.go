package models

import "time"

// EvaluationKind distinguishes regular assignments from final exams;
// transcripts only consider exams.
type EvaluationKind string

const (
	EvaluationAssignment EvaluationKind = "assignment"
	EvaluationExam       EvaluationKind = "exam"
)

// Evaluation is a graded test belonging to one subject and semester.
type Evaluation struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	SubjectID string         `db:"subject_id" json:"subject_id"`
	Semester  int            `db:"semester" json:"semester"`
	Kind      EvaluationKind `db:"kind" json:"kind"`
	Date      time.Time      `db:"date" json:"date"`
}

// Grade is one student's result on one evaluation; at most one grade exists
// per (student, evaluation).
type Grade struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	EvaluationID string    `db:"evaluation_id" json:"evaluation_id"`
	Value        float64   `db:"value" json:"value"`
	Remark       string    `db:"remark" json:"remark,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail joins a grade with its evaluation and student context.
type GradeDetail struct {
	Grade
	EvaluationName string         `db:"evaluation_name" json:"evaluation_name"`
	Semester       int            `db:"semester" json:"semester"`
	Kind           EvaluationKind `db:"kind" json:"kind"`
	SubjectID      string         `db:"subject_id" json:"subject_id"`
	SubjectName    string         `db:"subject_name" json:"subject_name"`
	StudentName    string         `db:"student_name" json:"student_name"`
}

// TranscriptGrade is one semester-2 exam grade with unit context, the raw
// material of the transcript generator.
type TranscriptGrade struct {
	UnitName    *string `db:"unit_name" json:"unit_name,omitempty"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	Value       float64 `db:"value" json:"value"`
}

// GradeFilter narrows admin grade queries.
type GradeFilter struct {
	ClassID        string
	SubjectID      string
	EnrollmentYear int
}
