package models

import "time"

// MonthlyFee is one month of tuition owed by a student for a school year.
// Uniqueness of (student, month, school_year) is a hard constraint; the fee
// transitions paid=false → paid=true exactly once.
type MonthlyFee struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Month      string    `db:"month" json:"month"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	Amount     float64   `db:"amount" json:"amount"`
	Paid       bool      `db:"paid" json:"paid"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MonthlyFeeDetail joins the fee with its student for admin listings.
type MonthlyFeeDetail struct {
	MonthlyFee
	StudentName string  `db:"student_name" json:"student_name"`
	ClassLevel  *string `db:"class_level" json:"class_level,omitempty"`
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment methods recorded on settled payments.
const (
	PaymentMethodCard = "Stripe"
	PaymentMethodCash = "Liquide"
)

// Payment aggregates one or more monthly fees settled together. SessionID
// carries the external checkout session used for webhook reconciliation; a
// fee is attached to at most one payment.
type Payment struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	Status      PaymentStatus `db:"status" json:"status"`
	SessionID   *string       `db:"session_id" json:"session_id,omitempty"`
	Method      string        `db:"method" json:"method,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// PaymentDetail is a payment with its linked fee rows.
type PaymentDetail struct {
	Payment
	Fees []MonthlyFee `json:"fees"`
}
