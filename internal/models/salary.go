package models

import "time"

// SalaryRate fixes the monthly amount a teacher earns for one subject in one
// class; unique per (teacher, class, subject).
type SalaryRate struct {
	ID        string  `db:"id" json:"id"`
	TeacherID string  `db:"teacher_id" json:"teacher_id"`
	ClassID   string  `db:"class_id" json:"class_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	Amount    float64 `db:"amount" json:"amount"`
}

// SalaryRateDetail joins a rate with display names.
type SalaryRateDetail struct {
	SalaryRate
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	ClassLevel  string `db:"class_level" json:"class_level"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// SalaryPayment settles one or more months of a teacher's salary; always
// recorded as paid.
type SalaryPayment struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SalaryPaymentItem is one month line inside a salary payment.
type SalaryPaymentItem struct {
	ID        string  `db:"id" json:"id"`
	PaymentID string  `db:"payment_id" json:"payment_id"`
	Month     string  `db:"month" json:"month"`
	Amount    float64 `db:"amount" json:"amount"`
}

// SalaryPaymentDetail is a salary payment with its month lines.
type SalaryPaymentDetail struct {
	SalaryPayment
	TeacherName string              `db:"teacher_name" json:"teacher_name"`
	Items       []SalaryPaymentItem `json:"items"`
}
